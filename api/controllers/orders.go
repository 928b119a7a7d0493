package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/andresvelarde/skyfare-backend/api/responses"
	"github.com/andresvelarde/skyfare-backend/api/validators"
	ordersvc "github.com/andresvelarde/skyfare-backend/internal/orders"
	"github.com/andresvelarde/skyfare-backend/pkg/db/models"
	"github.com/andresvelarde/skyfare-backend/pkg/logger"
	"github.com/andresvelarde/skyfare-backend/pkg/pagination"
)

type orderResponse struct {
	ID           uuid.UUID           `json:"id"`
	OrderDate    time.Time           `json:"order_date"`
	TotalPrice   string              `json:"total_price"`
	Currency     string              `json:"currency"`
	Status       string              `json:"status"`
	BillingName  string              `json:"billing_name"`
	BillingEmail string              `json:"billing_email"`
	Items        []orderItemResponse `json:"items"`
}

type orderItemResponse struct {
	ID           uuid.UUID `json:"id"`
	FlightID     uuid.UUID `json:"flight_id"`
	Quantity     int       `json:"quantity"`
	PricePerItem string    `json:"price_per_item"`
}

type orderListResponse struct {
	Orders     []orderResponse `json:"orders"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// OrderList returns the caller's purchase history.
func OrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		orders := make([]orderResponse, 0, len(result.Orders))
		for _, order := range result.Orders {
			orders = append(orders, newOrderResponse(order))
		}
		responses.WriteSuccess(w, orderListResponse{Orders: orders, NextCursor: result.NextCursor})
	}
}

// OrderGet returns one of the caller's orders with its items.
func OrderGet(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseURLUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(*order))
	}
}

func newOrderResponse(order models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:           item.ID,
			FlightID:     item.FlightID,
			Quantity:     item.Quantity,
			PricePerItem: item.PricePerItem.StringFixed(2),
		})
	}
	return orderResponse{
		ID:           order.ID,
		OrderDate:    order.OrderDate,
		TotalPrice:   order.TotalPrice.StringFixed(2),
		Currency:     order.Currency.String(),
		Status:       order.Status.String(),
		BillingName:  order.BillingName,
		BillingEmail: order.BillingEmail,
		Items:        items,
	}
}
