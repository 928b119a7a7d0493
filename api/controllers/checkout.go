package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andresvelarde/skyfare-backend/api/responses"
	"github.com/andresvelarde/skyfare-backend/api/validators"
	checkoutsvc "github.com/andresvelarde/skyfare-backend/internal/checkout"
	pkgerrors "github.com/andresvelarde/skyfare-backend/pkg/errors"
	"github.com/andresvelarde/skyfare-backend/pkg/logger"
)

type checkoutRequest struct {
	BillingName  string  `json:"billing_name,omitempty" validate:"omitempty,max=200"`
	BillingEmail string  `json:"billing_email,omitempty" validate:"omitempty,email,max=254"`
	ClientTotal  *string `json:"client_total,omitempty"`
}

type checkoutResponse struct {
	OrderID       uuid.UUID              `json:"order_id"`
	Status        string                 `json:"status"`
	TotalPrice    string                 `json:"total_price"`
	Currency      string                 `json:"currency"`
	Tickets       []ticketResponse       `json:"tickets"`
	SeatFallbacks []seatFallbackResponse `json:"seat_fallbacks,omitempty"`
}

type seatFallbackResponse struct {
	FlightID   uuid.UUID `json:"flight_id"`
	SeatNumber string    `json:"seat_number"`
}

// Checkout converts the caller's cart into an order plus tickets.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var clientTotal *decimal.Decimal
		if payload.ClientTotal != nil {
			parsed, parseErr := decimal.NewFromString(*payload.ClientTotal)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "client_total must be a decimal string"))
				return
			}
			clientTotal = &parsed
		}

		result, err := svc.Checkout(r.Context(), userID, checkoutsvc.Input{
			BillingName:  validators.SanitizeString(payload.BillingName, 200),
			BillingEmail: validators.SanitizeString(payload.BillingEmail, 254),
			ClientTotal:  clientTotal,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutResponse(result))
	}
}

func newCheckoutResponse(result *checkoutsvc.Result) checkoutResponse {
	if result == nil || result.Order == nil {
		return checkoutResponse{}
	}
	tickets := make([]ticketResponse, 0, len(result.Tickets))
	for _, ticket := range result.Tickets {
		tickets = append(tickets, newTicketResponse(ticket))
	}
	fallbacks := make([]seatFallbackResponse, 0, len(result.SeatFallbacks))
	for _, fb := range result.SeatFallbacks {
		fallbacks = append(fallbacks, seatFallbackResponse{FlightID: fb.FlightID, SeatNumber: fb.SeatNumber})
	}
	return checkoutResponse{
		OrderID:       result.Order.ID,
		Status:        result.Order.Status.String(),
		TotalPrice:    result.Order.TotalPrice.StringFixed(2),
		Currency:      result.Order.Currency.String(),
		Tickets:       tickets,
		SeatFallbacks: fallbacks,
	}
}
