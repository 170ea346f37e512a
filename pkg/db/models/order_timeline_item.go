package models

import (
	"time"

	"github.com/google/uuid"
)

// UniqueTimelineOrderStage enforces at most one entry per (order, stage).
// Duplicate deliveries update the existing row instead of inserting.
const UniqueTimelineOrderStage = "uq_order_timeline_order_stage"

// Timeline stage names, in lifecycle order.
const (
	StageOrderPlaced      = "Order Placed"
	StagePaymentInitiated = "Payment Initiated"
	StagePaymentSuccess   = "Payment Success"
	StagePaymentPending   = "Payment Pending"
	StagePaymentFailed    = "Payment Failed"
	StageOrderProcessing  = "Order Processing"
	StageOrderCompleted   = "Order Completed"
	StageOrderCancelled   = "Order Cancelled"
)

// OrderTimelineItem is one stage record in an order's append-only history.
type OrderTimelineItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex:uq_order_timeline_order_stage"`
	Stage     string    `gorm:"column:stage;type:text;not null;uniqueIndex:uq_order_timeline_order_stage"`
	Done      bool      `gorm:"column:done;not null;default:false"`
	Content   string    `gorm:"column:content;not null;default:''"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
