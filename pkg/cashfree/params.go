package cashfree

import (
	"errors"

	"github.com/shopspring/decimal"
)

// OrderSessionParams carries everything needed to open a payment session.
type OrderSessionParams struct {
	OrderID       string
	Amount        decimal.Decimal
	Currency      string
	CustomerID    string
	CustomerName  string
	CustomerPhone string
	ReturnURL     string
	NotifyURL     string
}

func (p OrderSessionParams) validate() error {
	if p.OrderID == "" {
		return errors.New("order id is required")
	}
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("amount must be positive")
	}
	if p.CustomerID == "" {
		return errors.New("customer id is required")
	}
	return nil
}

func (p OrderSessionParams) toRequest() orderSessionRequest {
	currency := p.Currency
	if currency == "" {
		currency = "INR"
	}
	req := orderSessionRequest{
		OrderID:       p.OrderID,
		OrderAmount:   p.Amount,
		OrderCurrency: currency,
		CustomerDetails: customerDetails{
			CustomerID:    p.CustomerID,
			CustomerName:  p.CustomerName,
			CustomerPhone: p.CustomerPhone,
		},
	}
	if p.ReturnURL != "" || p.NotifyURL != "" {
		req.OrderMeta = &orderMeta{
			ReturnURL: p.ReturnURL,
			NotifyURL: p.NotifyURL,
		}
	}
	return req
}

// OrderSession is the provider-side session handed back to clients.
type OrderSession struct {
	SessionID   string
	OrderStatus string
}

// PaymentResult is one payment attempt as reported by the provider.
type PaymentResult struct {
	OrderID      string
	Status       string
	PaymentGroup string
}

type orderSessionRequest struct {
	OrderID         string          `json:"order_id"`
	OrderAmount     decimal.Decimal `json:"order_amount"`
	OrderCurrency   string          `json:"order_currency"`
	CustomerDetails customerDetails `json:"customer_details"`
	OrderMeta       *orderMeta      `json:"order_meta,omitempty"`
}

type customerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`
}

type orderMeta struct {
	ReturnURL string `json:"return_url,omitempty"`
	NotifyURL string `json:"notify_url,omitempty"`
}

type orderSessionResponse struct {
	OrderID          string `json:"order_id"`
	OrderStatus      string `json:"order_status"`
	PaymentSessionID string `json:"payment_session_id"`
}

type paymentEntry struct {
	PaymentStatus string `json:"payment_status"`
	PaymentGroup  string `json:"payment_group"`
}

type apiErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Type    string `json:"type"`
}
