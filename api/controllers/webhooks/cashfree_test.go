package webhooks

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	cashfreewebhook "github.com/feastline/feastline-backend/internal/webhooks/cashfree"
	pkgerrors "github.com/feastline/feastline-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWebhookService struct {
	events []cashfreewebhook.Event
	err    error
}

func (f *fakeWebhookService) Process(ctx context.Context, event cashfreewebhook.Event) error {
	f.events = append(f.events, event)
	return f.err
}

type fakeVerifier struct {
	err       error
	signature string
	timestamp string
	body      []byte
}

func (f *fakeVerifier) VerifyWebhookSignature(signature, timestamp string, rawBody []byte) error {
	f.signature = signature
	f.timestamp = timestamp
	f.body = rawBody
	return f.err
}

func cashfreeBody(orderID uuid.UUID) []byte {
	return []byte(fmt.Sprintf(`{
		"type": "PAYMENT_SUCCESS_WEBHOOK",
		"data": {
			"order": {"order_id": %q},
			"payment": {
				"cf_payment_id": 5114911130,
				"payment_status": "SUCCESS",
				"payment_group": "upi"
			}
		}
	}`, orderID))
}

func TestCashfreeWebhookProcessesVerifiedDelivery(t *testing.T) {
	orderID := uuid.New()
	service := &fakeWebhookService{}
	verifier := &fakeVerifier{}
	handler := CashfreeWebhook(service, verifier, nil)

	body := cashfreeBody(orderID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/cashfree", bytes.NewReader(body))
	req.Header.Set("x-webhook-signature", "sig-value")
	req.Header.Set("x-webhook-timestamp", "1717500000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, service.events, 1)

	event := service.events[0]
	assert.Equal(t, "5114911130", event.ID)
	assert.Equal(t, orderID, event.OrderID)
	assert.Equal(t, "SUCCESS", event.Status)
	assert.Equal(t, "upi", event.PaymentGroup)

	assert.Equal(t, "sig-value", verifier.signature)
	assert.Equal(t, "1717500000", verifier.timestamp)
	assert.Equal(t, body, verifier.body)
}

func TestCashfreeWebhookRejectsBadSignature(t *testing.T) {
	service := &fakeWebhookService{}
	verifier := &fakeVerifier{err: pkgerrors.New(pkgerrors.CodeSignature, "webhook signature mismatch")}
	handler := CashfreeWebhook(service, verifier, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/cashfree", bytes.NewReader(cashfreeBody(uuid.New())))
	req.Header.Set("x-webhook-signature", "forged")
	req.Header.Set("x-webhook-timestamp", "1717500000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, service.events)
}

func TestCashfreeWebhookRejectsMalformedPayload(t *testing.T) {
	service := &fakeWebhookService{}
	handler := CashfreeWebhook(service, &fakeVerifier{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/cashfree", bytes.NewReader([]byte(`{"data":{"order":{"order_id":"not-a-uuid"}}}`)))
	req.Header.Set("x-webhook-signature", "sig")
	req.Header.Set("x-webhook-timestamp", "1717500000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, service.events)
}

func TestCashfreeWebhookPropagatesServiceError(t *testing.T) {
	service := &fakeWebhookService{err: pkgerrors.New(pkgerrors.CodeDependency, "gateway lookup failed")}
	handler := CashfreeWebhook(service, &fakeVerifier{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/cashfree", bytes.NewReader(cashfreeBody(uuid.New())))
	req.Header.Set("x-webhook-signature", "sig")
	req.Header.Set("x-webhook-timestamp", "1717500000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Len(t, service.events, 1)
}
