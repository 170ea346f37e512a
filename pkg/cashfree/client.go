package cashfree

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/feastline/feastline-backend/pkg/config"
	pkgerrors "github.com/feastline/feastline-backend/pkg/errors"
	"github.com/feastline/feastline-backend/pkg/logger"
)

const (
	sandboxEnv    = "sandbox"
	productionEnv = "production"

	// APIVersion pins the Cashfree PG API contract this client speaks.
	APIVersion = "2023-08-01"
)

var (
	errClientIDRequired      = errors.New("cashfree client id is required")
	errClientSecretRequired  = errors.New("cashfree client secret is required")
	errWebhookSecretRequired = errors.New("cashfree webhook secret is required")
	errInvalidEnv            = fmt.Errorf("cashfree environment must be %q or %q", sandboxEnv, productionEnv)
	errLoggerRequired        = errors.New("cashfree logger is required")
)

var baseURLs = map[string]string{
	sandboxEnv:    "https://sandbox.cashfree.com/pg",
	productionEnv: "https://api.cashfree.com/pg",
}

// Client wraps the Cashfree PG REST API with centralized auth headers,
// logging, timeouts, and error mapping. Cashfree ships no Go SDK, so the
// client speaks the HTTP contract directly.
type Client struct {
	httpClient    *http.Client
	clientID      string
	clientSecret  string
	webhookSecret string
	environment   string
	baseURL       string
	logger        *logger.Logger
}

// NewClient initializes the Cashfree wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.CashfreeConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	clientID := strings.TrimSpace(cfg.ClientID)
	if clientID == "" {
		return nil, errClientIDRequired
	}
	clientSecret := strings.TrimSpace(cfg.ClientSecret)
	if clientSecret == "" {
		return nil, errClientSecretRequired
	}
	webhookSecret := strings.TrimSpace(cfg.WebhookSecret)
	if webhookSecret == "" {
		return nil, errWebhookSecretRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		httpClient:    &http.Client{Timeout: timeout},
		clientID:      clientID,
		clientSecret:  clientSecret,
		webhookSecret: webhookSecret,
		environment:   env,
		baseURL:       baseURLs[env],
		logger:        logg,
	}

	logg.Info(ctx, "cashfree client initialized")
	return c, nil
}

// Environment reports the normalized Cashfree environment.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// CreateOrderSession opens a payment session for the given order. The
// returned session id is handed to the client SDK to collect payment.
func (c *Client) CreateOrderSession(ctx context.Context, params OrderSessionParams) (*OrderSession, error) {
	if err := params.validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order session params")
	}

	c.log(ctx, "request", "create_order_session", map[string]any{
		"order_id": params.OrderID,
		"amount":   params.Amount.String(),
		"currency": params.Currency,
	})

	body, err := json.Marshal(params.toRequest())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding order session request")
	}

	var resp orderSessionResponse
	if err := c.do(ctx, http.MethodPost, "/orders", bytes.NewReader(body), &resp); err != nil {
		c.log(ctx, "error", "create_order_session", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "create_order_session", map[string]any{
		"order_id":     resp.OrderID,
		"order_status": resp.OrderStatus,
	})
	return &OrderSession{
		SessionID:   resp.PaymentSessionID,
		OrderStatus: resp.OrderStatus,
	}, nil
}

// FetchPaymentStatus returns the provider's latest payment attempt for the
// order, or an empty result when no attempt exists yet.
func (c *Client) FetchPaymentStatus(ctx context.Context, orderID string) (*PaymentResult, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	c.log(ctx, "request", "fetch_payment_status", map[string]any{"order_id": orderID})

	var payments []paymentEntry
	if err := c.do(ctx, http.MethodGet, "/orders/"+orderID+"/payments", nil, &payments); err != nil {
		c.log(ctx, "error", "fetch_payment_status", map[string]any{"error": err.Error()})
		return nil, err
	}

	if len(payments) == 0 {
		return &PaymentResult{OrderID: orderID, Status: "NOT_ATTEMPTED"}, nil
	}

	// Cashfree returns attempts newest first.
	latest := payments[0]
	c.log(ctx, "response", "fetch_payment_status", map[string]any{
		"order_id": orderID,
		"status":   latest.PaymentStatus,
	})
	return &PaymentResult{
		OrderID:      orderID,
		Status:       latest.PaymentStatus,
		PaymentGroup: latest.PaymentGroup,
	}, nil
}

// VerifyWebhookSignature checks the HMAC-SHA256 signature Cashfree sends
// with every webhook: base64(hmac(secret, timestamp + rawBody)). The
// comparison is constant time. A mismatch is a security event, not a
// retryable failure.
func (c *Client) VerifyWebhookSignature(signature, timestamp string, rawBody []byte) error {
	if c == nil || c.webhookSecret == "" {
		return pkgerrors.New(pkgerrors.CodeInternal, "webhook secret not configured")
	}
	if strings.TrimSpace(signature) == "" || strings.TrimSpace(timestamp) == "" {
		return pkgerrors.New(pkgerrors.CodeSignature, "missing webhook signature headers")
	}

	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write(rawBody)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return pkgerrors.New(pkgerrors.CodeSignature, "webhook signature mismatch")
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building cashfree request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", c.clientID)
	req.Header.Set("x-client-secret", c.clientSecret)
	req.Header.Set("x-api-version", APIVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cashfree request failed")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading cashfree response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.mapAPIError(resp.StatusCode, payload)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding cashfree response")
	}
	return nil
}

func (c *Client) mapAPIError(status int, payload []byte) error {
	var apiErr apiErrorResponse
	msg := "cashfree api error"
	if err := json.Unmarshal(payload, &apiErr); err == nil && apiErr.Message != "" {
		msg = fmt.Sprintf("cashfree: %s", apiErr.Message)
	}

	code := pkgerrors.CodeDependency
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		code = pkgerrors.CodeUnauthorized
	case status == http.StatusNotFound:
		code = pkgerrors.CodeNotFound
	case status >= 400 && status < 500:
		code = pkgerrors.CodeValidation
	}
	return pkgerrors.New(code, fmt.Sprintf("%s (status %d)", msg, status))
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("cashfree %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("cashfree %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"secret", "token", "phone", "email", "customer"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func normalizeEnv(env string) (string, error) {
	switch env {
	case sandboxEnv, productionEnv:
		return env, nil
	default:
		return "", errInvalidEnv
	}
}
