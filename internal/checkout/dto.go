package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/feastline/feastline-backend/pkg/cashfree"
	"github.com/feastline/feastline-backend/pkg/db/models"
	"github.com/feastline/feastline-backend/pkg/enums"
)

// ResultDTO is the checkout response. PaymentSessionID is nil for offline
// methods and for online orders whose session open failed; the client then
// retries the session against the committed order.
type ResultDTO struct {
	OrderID          uuid.UUID           `json:"order_id"`
	Status           enums.OrderStatus   `json:"status"`
	PaymentStatus    enums.PaymentStatus `json:"payment_status"`
	PaymentMethod    enums.PaymentMethod `json:"payment_method"`
	PaymentSessionID *string             `json:"payment_session_id,omitempty"`
	Subtotal         decimal.Decimal     `json:"subtotal"`
	Discount         decimal.Decimal     `json:"discount"`
	Total            decimal.Decimal     `json:"total"`
}

func toResultDTO(order *models.Order, session *cashfree.OrderSession) *ResultDTO {
	dto := &ResultDTO{
		OrderID:       order.ID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		PaymentMethod: order.PaymentMethod,
		Subtotal:      order.Subtotal,
		Discount:      order.Discount,
		Total:         order.Total,
	}
	if session != nil {
		sessionID := session.SessionID
		dto.PaymentSessionID = &sessionID
	}
	return dto
}
