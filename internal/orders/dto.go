package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/feastline/feastline-backend/pkg/db/models"
	"github.com/feastline/feastline-backend/pkg/enums"
)

// OrderItemDTO is one snapshotted line of an order.
type OrderItemDTO struct {
	FoodItemID uuid.UUID       `json:"food_item_id"`
	Name       string          `json:"name"`
	VariantID  *uuid.UUID      `json:"variant_id,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	LineTotal  decimal.Decimal `json:"line_total"`
}

// TimelineEntryDTO is one stage of an order's history.
type TimelineEntryDTO struct {
	Stage     string    `json:"stage"`
	Done      bool      `json:"done"`
	Content   string    `json:"content,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderDTO is the full order view returned to customers and staff.
type OrderDTO struct {
	ID                  uuid.UUID           `json:"id"`
	OutletID            uuid.UUID           `json:"outlet_id"`
	OutletName          string              `json:"outlet_name,omitempty"`
	TableName           string              `json:"table_name,omitempty"`
	OrderType           enums.OrderType     `json:"order_type"`
	Status              enums.OrderStatus   `json:"status"`
	PaymentStatus       enums.PaymentStatus `json:"payment_status"`
	PaymentMethod       enums.PaymentMethod `json:"payment_method"`
	PaymentSessionID    *string             `json:"payment_session_id,omitempty"`
	CookingInstructions *string             `json:"cooking_instructions,omitempty"`
	Subtotal            decimal.Decimal     `json:"subtotal"`
	Discount            decimal.Decimal     `json:"discount"`
	Total               decimal.Decimal     `json:"total"`
	Items               []OrderItemDTO      `json:"items"`
	Timeline            []TimelineEntryDTO  `json:"timeline,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
}

// OrderListDTO is a cursor page of orders.
type OrderListDTO struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// LiveOrdersDTO buckets today's in-flight orders for the staff board.
type LiveOrdersDTO struct {
	New       []OrderDTO `json:"new"`
	Preparing []OrderDTO `json:"preparing"`
	Completed []OrderDTO `json:"completed"`
}

func toOrderDTO(order *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:                  order.ID,
		OutletID:            order.OutletID,
		OrderType:           order.OrderType,
		Status:              order.Status,
		PaymentStatus:       order.PaymentStatus,
		PaymentMethod:       order.PaymentMethod,
		PaymentSessionID:    order.PaymentSessionID,
		CookingInstructions: order.CookingInstructions,
		Subtotal:            order.Subtotal,
		Discount:            order.Discount,
		Total:               order.Total,
		Items:               make([]OrderItemDTO, 0, len(order.Items)),
		CreatedAt:           order.CreatedAt,
	}
	if order.Outlet != nil {
		dto.OutletName = order.Outlet.Name
	}
	if order.Table != nil {
		dto.TableName = order.Table.Name
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			FoodItemID: item.FoodItemID,
			Name:       item.ItemName,
			VariantID:  item.VariantID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			LineTotal:  item.LineTotal,
		})
	}
	for _, entry := range order.Timeline {
		dto.Timeline = append(dto.Timeline, TimelineEntryDTO{
			Stage:     entry.Stage,
			Done:      entry.Done,
			Content:   entry.Content,
			UpdatedAt: entry.UpdatedAt,
		})
	}
	return dto
}
