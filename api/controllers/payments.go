package controllers

import (
	"context"
	"net/http"

	"github.com/feastline/feastline-backend/api/responses"
	"github.com/feastline/feastline-backend/internal/orders"
	"github.com/feastline/feastline-backend/pkg/cashfree"
	pkgerrors "github.com/feastline/feastline-backend/pkg/errors"
	"github.com/feastline/feastline-backend/pkg/logger"
)

type paymentStatusFetcher interface {
	FetchPaymentStatus(ctx context.Context, orderID string) (*cashfree.PaymentResult, error)
}

type paymentStatusDTO struct {
	OrderID       string `json:"order_id"`
	GatewayStatus string `json:"gateway_status"`
	PaymentGroup  string `json:"payment_group,omitempty"`
}

// PaymentStatus proxies the gateway's view of an order's payment. Access is
// gated the same way as the order detail.
func PaymentStatus(ordersSvc orders.Service, gateway paymentStatusFetcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// Detail enforces customer-or-manager access before we talk to
		// the gateway.
		if _, err := ordersSvc.Detail(r.Context(), actor, orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := gateway.FetchPaymentStatus(r.Context(), orderID.String())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch payment status"))
			return
		}

		responses.WriteSuccess(w, paymentStatusDTO{
			OrderID:       result.OrderID,
			GatewayStatus: result.Status,
			PaymentGroup:  result.PaymentGroup,
		})
	}
}
