package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/andresvelarde/skyfare-backend/api/responses"
	"github.com/andresvelarde/skyfare-backend/api/validators"
	ordersvc "github.com/andresvelarde/skyfare-backend/internal/orders"
	pkgerrors "github.com/andresvelarde/skyfare-backend/pkg/errors"
	"github.com/andresvelarde/skyfare-backend/pkg/logger"
)

type paymentWebhookRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
	Status  string    `json:"status" validate:"required,oneof=succeeded failed"`
}

// PaymentWebhook receives the payment provider's settlement signal and
// resolves the order's pending_payment state.
func PaymentWebhook(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var payload paymentWebhookRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ResolvePayment(r.Context(), payload.OrderID, payload.Status == "succeeded")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{
			"order_id": order.ID.String(),
			"status":   order.Status.String(),
		})
	}
}
