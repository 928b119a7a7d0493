package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/andresvelarde/skyfare-backend/api/responses"
	"github.com/andresvelarde/skyfare-backend/api/validators"
	cartsvc "github.com/andresvelarde/skyfare-backend/internal/cart"
	"github.com/andresvelarde/skyfare-backend/pkg/enums"
	pkgerrors "github.com/andresvelarde/skyfare-backend/pkg/errors"
	"github.com/andresvelarde/skyfare-backend/pkg/logger"
)

type addCartItemRequest struct {
	FlightID       uuid.UUID `json:"flight_id" validate:"required"`
	SeatPreference string    `json:"seat_preference" validate:"required,oneof=explicit deferred random"`
	SeatNumber     *string   `json:"seat_number,omitempty" validate:"omitempty,min=2,max=4"`
	SeatClass      *string   `json:"seat_class,omitempty" validate:"omitempty,oneof=economy business first"`
}

type cartResponse struct {
	CartID        uuid.UUID          `json:"cart_id"`
	Items         []cartItemResponse `json:"items"`
	TotalQuantity int                `json:"total_quantity"`
	TotalPrice    string             `json:"total_price"`
	Currency      string             `json:"currency"`
}

type cartItemResponse struct {
	FlightID       uuid.UUID `json:"flight_id"`
	FlightNumber   string    `json:"flight_number"`
	Airline        string    `json:"airline"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DepartureTime  time.Time `json:"departure_time"`
	Quantity       int       `json:"quantity"`
	SeatPreference string    `json:"seat_preference"`
	SeatNumber     *string   `json:"seat_number,omitempty"`
	SeatClass      *string   `json:"seat_class,omitempty"`
	UnitPrice      string    `json:"unit_price"`
	LinePrice      string    `json:"line_price"`
}

// CartGet returns the caller's priced cart.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.GetCart(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(summary))
	}
}

// CartAddItem adds one unit of a flight to the cart.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		preference, err := enums.ParseSeatPreference(payload.SeatPreference)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
			return
		}
		var seatClass *enums.SeatClass
		if payload.SeatClass != nil {
			parsed, parseErr := enums.ParseSeatClass(*payload.SeatClass)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, parseErr.Error()))
				return
			}
			seatClass = &parsed
		}

		summary, err := svc.AddItem(r.Context(), userID, cartsvc.AddItemInput{
			FlightID:       payload.FlightID,
			SeatPreference: preference,
			SeatNumber:     payload.SeatNumber,
			SeatClass:      seatClass,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(summary))
	}
}

// CartDecreaseItem removes one unit of a flight from the cart.
func CartDecreaseItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		flightID, err := validators.ParseURLUUID(chi.URLParam(r, "flightID"), "flightID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.DecreaseItem(r.Context(), userID, flightID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(summary))
	}
}

// CartRemoveItem drops a whole line item regardless of quantity.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		flightID, err := validators.ParseURLUUID(chi.URLParam(r, "flightID"), "flightID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.RemoveItem(r.Context(), userID, flightID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(summary))
	}
}

// CartClear empties the cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.ClearCart(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(summary))
	}
}

func newCartResponse(summary *cartsvc.Summary) cartResponse {
	if summary == nil {
		return cartResponse{}
	}
	items := make([]cartItemResponse, 0, len(summary.Items))
	for _, item := range summary.Items {
		var seatClass *string
		if item.SeatClass != nil {
			value := item.SeatClass.String()
			seatClass = &value
		}
		items = append(items, cartItemResponse{
			FlightID:       item.FlightID,
			FlightNumber:   item.FlightNumber,
			Airline:        item.Airline,
			Origin:         item.Origin,
			Destination:    item.Destination,
			DepartureTime:  item.DepartureTime,
			Quantity:       item.Quantity,
			SeatPreference: item.SeatPreference.String(),
			SeatNumber:     item.SeatNumber,
			SeatClass:      seatClass,
			UnitPrice:      item.UnitPrice.StringFixed(2),
			LinePrice:      item.LinePrice.StringFixed(2),
		})
	}
	return cartResponse{
		CartID:        summary.CartID,
		Items:         items,
		TotalQuantity: summary.TotalQuantity,
		TotalPrice:    summary.TotalPrice.StringFixed(2),
		Currency:      summary.Currency.String(),
	}
}
