package webhooks

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/feastline/feastline-backend/api/responses"
	cashfreewebhook "github.com/feastline/feastline-backend/internal/webhooks/cashfree"
	pkgerrors "github.com/feastline/feastline-backend/pkg/errors"
	"github.com/feastline/feastline-backend/pkg/logger"
	"github.com/google/uuid"
)

type signatureVerifier interface {
	VerifyWebhookSignature(signature, timestamp string, rawBody []byte) error
}

// cashfreePayload is the webhook envelope Cashfree delivers for payment
// lifecycle events.
type cashfreePayload struct {
	Type string `json:"type"`
	Data struct {
		Order struct {
			OrderID string `json:"order_id"`
		} `json:"order"`
		Payment struct {
			PaymentID     json.Number `json:"cf_payment_id"`
			PaymentStatus string      `json:"payment_status"`
			PaymentGroup  string      `json:"payment_group"`
		} `json:"payment"`
	} `json:"data"`
}

// CashfreeWebhook handles Cashfree payment lifecycle events. Replay
// suppression lives in the reconciler, so a verified delivery goes
// straight to Process.
func CashfreeWebhook(svc cashfreewebhook.Service, verifier signatureVerifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if verifier == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cashfree client unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		signature := r.Header.Get("x-webhook-signature")
		timestamp := r.Header.Get("x-webhook-timestamp")
		if err := verifier.VerifyWebhookSignature(signature, timestamp, payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		event, err := parseCashfreeEvent(payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Process(ctx, event); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(ctx, fmt.Sprintf("cashfree event %s processed", event.ID))
		}
		responses.WriteSuccess(w, nil)
	}
}

func parseCashfreeEvent(payload []byte) (cashfreewebhook.Event, error) {
	var body cashfreePayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return cashfreewebhook.Event{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode webhook payload")
	}

	orderID, err := uuid.Parse(body.Data.Order.OrderID)
	if err != nil {
		return cashfreewebhook.Event{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse order id")
	}
	eventID := body.Data.Payment.PaymentID.String()
	if eventID == "" {
		return cashfreewebhook.Event{}, pkgerrors.New(pkgerrors.CodeValidation, "payment id missing")
	}

	return cashfreewebhook.Event{
		ID:           eventID,
		OrderID:      orderID,
		Status:       body.Data.Payment.PaymentStatus,
		PaymentGroup: body.Data.Payment.PaymentGroup,
	}, nil
}
