package cashfree

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/feastline/feastline-backend/pkg/errors"
)

func TestVerifyWebhookSignature(t *testing.T) {
	c := &Client{webhookSecret: "whsec"}
	body := []byte(`{"order_id":"o-1"}`)
	ts := "1716200000"

	mac := hmac.New(sha256.New, []byte("whsec"))
	mac.Write([]byte(ts))
	mac.Write(body)
	good := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if err := c.VerifyWebhookSignature(good, ts, body); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}

	if err := c.VerifyWebhookSignature(good, "1716200001", body); !pkgerrors.IsCode(err, pkgerrors.CodeSignature) {
		t.Fatalf("expected signature error for wrong timestamp, got %v", err)
	}

	if err := c.VerifyWebhookSignature("bogus", ts, body); !pkgerrors.IsCode(err, pkgerrors.CodeSignature) {
		t.Fatalf("expected signature error for wrong signature, got %v", err)
	}

	if err := c.VerifyWebhookSignature("", ts, body); !pkgerrors.IsCode(err, pkgerrors.CodeSignature) {
		t.Fatalf("expected signature error for missing headers, got %v", err)
	}
}

func TestCreateOrderSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("x-client-id") != "cid" || r.Header.Get("x-api-version") != APIVersion {
			t.Fatalf("missing auth headers")
		}

		var req orderSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.OrderID != "order-1" || req.OrderCurrency != "INR" {
			t.Fatalf("unexpected request payload %+v", req)
		}

		json.NewEncoder(w).Encode(orderSessionResponse{
			OrderID:          "order-1",
			OrderStatus:      "ACTIVE",
			PaymentSessionID: "session-xyz",
		})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	session, err := c.CreateOrderSession(context.Background(), OrderSessionParams{
		OrderID:    "order-1",
		Amount:     decimal.NewFromInt(250),
		CustomerID: "user-1",
	})
	if err != nil {
		t.Fatalf("create order session: %v", err)
	}
	if session.SessionID != "session-xyz" {
		t.Fatalf("unexpected session id %q", session.SessionID)
	}
}

func TestCreateOrderSessionRejectsBadParams(t *testing.T) {
	c := testClient("http://unused")
	_, err := c.CreateOrderSession(context.Background(), OrderSessionParams{
		OrderID:    "order-1",
		Amount:     decimal.Zero,
		CustomerID: "user-1",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFetchPaymentStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/order-1/payments" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]paymentEntry{
			{PaymentStatus: "SUCCESS", PaymentGroup: "upi"},
			{PaymentStatus: "FAILED", PaymentGroup: "upi"},
		})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	result, err := c.FetchPaymentStatus(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("fetch payment status: %v", err)
	}
	if result.Status != "SUCCESS" || result.PaymentGroup != "upi" {
		t.Fatalf("expected latest attempt, got %+v", result)
	}
}

func TestFetchPaymentStatusNoAttempts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]paymentEntry{})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	result, err := c.FetchPaymentStatus(context.Background(), "order-9")
	if err != nil {
		t.Fatalf("fetch payment status: %v", err)
	}
	if result.Status != "NOT_ATTEMPTED" {
		t.Fatalf("unexpected status %q", result.Status)
	}
}

func TestMapAPIError(t *testing.T) {
	c := &Client{}
	tests := []struct {
		status int
		code   pkgerrors.Code
	}{
		{http.StatusUnauthorized, pkgerrors.CodeUnauthorized},
		{http.StatusNotFound, pkgerrors.CodeNotFound},
		{http.StatusBadRequest, pkgerrors.CodeValidation},
		{http.StatusInternalServerError, pkgerrors.CodeDependency},
	}
	for _, tt := range tests {
		err := c.mapAPIError(tt.status, []byte(`{"message":"boom"}`))
		if !pkgerrors.IsCode(err, tt.code) {
			t.Fatalf("status %d expected %s got %v", tt.status, tt.code, err)
		}
	}
}

func TestRedact(t *testing.T) {
	c := &Client{}
	if out := c.redact("customer_phone", "9999"); out != "[REDACTED]" {
		t.Fatalf("expected redacted value, got %v", out)
	}
	if v := c.redact("order_status", "ACTIVE"); v != "ACTIVE" {
		t.Fatalf("unexpected redaction for safe key")
	}
}

func testClient(baseURL string) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: 5 * time.Second},
		clientID:      "cid",
		clientSecret:  "csecret",
		webhookSecret: "whsec",
		environment:   sandboxEnv,
		baseURL:       baseURL,
	}
}
