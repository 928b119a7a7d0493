package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/andresvelarde/skyfare-backend/api/responses"
	"github.com/andresvelarde/skyfare-backend/api/validators"
	checkinsvc "github.com/andresvelarde/skyfare-backend/internal/checkin"
	ticketsvc "github.com/andresvelarde/skyfare-backend/internal/tickets"
	"github.com/andresvelarde/skyfare-backend/pkg/db/models"
	"github.com/andresvelarde/skyfare-backend/pkg/enums"
	pkgerrors "github.com/andresvelarde/skyfare-backend/pkg/errors"
	"github.com/andresvelarde/skyfare-backend/pkg/logger"
	"github.com/andresvelarde/skyfare-backend/pkg/pagination"
)

type checkInRequest struct {
	SeatNumber *string `json:"seat_number,omitempty" validate:"omitempty,min=2,max=4"`
	SeatClass  *string `json:"seat_class,omitempty" validate:"omitempty,oneof=economy business first"`
}

type ticketResponse struct {
	ID                    uuid.UUID  `json:"id"`
	OrderItemID           uuid.UUID  `json:"order_item_id"`
	FlightID              uuid.UUID  `json:"flight_id"`
	Price                 string     `json:"price"`
	PurchaseTime          time.Time  `json:"purchase_time"`
	Status                string     `json:"status"`
	SeatSelectionDeferred bool       `json:"seat_selection_deferred"`
	RandomSeatAllocation  bool       `json:"random_seat_allocation"`
	SeatNumber            *string    `json:"seat_number,omitempty"`
	SeatClass             *string    `json:"seat_class,omitempty"`
	CheckedInAt           *time.Time `json:"checked_in_at,omitempty"`
}

type ticketListResponse struct {
	Tickets    []ticketResponse `json:"tickets"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

type checkInResponse struct {
	TicketID    uuid.UUID `json:"ticket_id"`
	Status      string    `json:"status"`
	SeatNumber  *string   `json:"seat_number,omitempty"`
	SeatClass   *string   `json:"seat_class,omitempty"`
	CheckedInAt time.Time `json:"checked_in_at"`
}

// TicketList returns the caller's tickets.
func TicketList(svc ticketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), userID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tickets := make([]ticketResponse, 0, len(result.Tickets))
		for _, ticket := range result.Tickets {
			tickets = append(tickets, newTicketResponse(ticket))
		}
		responses.WriteSuccess(w, ticketListResponse{Tickets: tickets, NextCursor: result.NextCursor})
	}
}

// TicketGet returns one of the caller's tickets.
func TicketGet(svc ticketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ticketID, err := validators.ParseURLUUID(chi.URLParam(r, "ticketID"), "ticketID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ticket, err := svc.Get(r.Context(), userID, ticketID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newTicketResponse(*ticket))
	}
}

// TicketCheckIn checks in a ticket, optionally binding a seat at the gate.
func TicketCheckIn(svc checkinsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ticketID, err := validators.ParseURLUUID(chi.URLParam(r, "ticketID"), "ticketID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkInRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var result *checkinsvc.Result
		if payload.SeatNumber != nil {
			if payload.SeatClass == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "seat_class is required when seat_number is provided"))
				return
			}
			seatClass, parseErr := enums.ParseSeatClass(*payload.SeatClass)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, parseErr.Error()))
				return
			}
			result, err = svc.CheckInWithSeat(r.Context(), userID, ticketID, *payload.SeatNumber, seatClass)
		} else {
			result, err = svc.CheckInWithoutSeat(r.Context(), userID, ticketID)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var seatClass *string
		if result.SeatClass != nil {
			value := result.SeatClass.String()
			seatClass = &value
		}
		responses.WriteSuccess(w, checkInResponse{
			TicketID:    result.TicketID,
			Status:      result.Status.String(),
			SeatNumber:  result.SeatNumber,
			SeatClass:   seatClass,
			CheckedInAt: result.CheckedInAt,
		})
	}
}

func newTicketResponse(ticket models.Ticket) ticketResponse {
	var seatClass *string
	if ticket.SeatClass != nil {
		value := ticket.SeatClass.String()
		seatClass = &value
	}
	return ticketResponse{
		ID:                    ticket.ID,
		OrderItemID:           ticket.OrderItemID,
		FlightID:              ticket.FlightID,
		Price:                 ticket.Price.StringFixed(2),
		PurchaseTime:          ticket.PurchaseTime,
		Status:                ticket.Status.String(),
		SeatSelectionDeferred: ticket.SeatSelectionDeferred,
		RandomSeatAllocation:  ticket.RandomSeatAllocation,
		SeatNumber:            ticket.SeatNumber,
		SeatClass:             seatClass,
		CheckedInAt:           ticket.CheckedInAt,
	}
}
