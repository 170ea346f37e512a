package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/feastline/feastline-backend/pkg/enums"
)

// Order is an immutable-once-created purchase record. Total is fixed at
// checkout from the cart snapshot. Status (kitchen side) and PaymentStatus
// (gateway side) evolve independently after creation.
type Order struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID              uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	User                *User               `gorm:"foreignKey:UserID"`
	OutletID            uuid.UUID           `gorm:"column:outlet_id;type:uuid;not null;index:idx_orders_outlet_created"`
	Outlet              *Outlet             `gorm:"foreignKey:OutletID"`
	TableID             *uuid.UUID          `gorm:"column:table_id;type:uuid"`
	Table               *Table              `gorm:"foreignKey:TableID"`
	OrderType           enums.OrderType     `gorm:"column:order_type;type:text;not null"`
	Status              enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus       enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'active'"`
	PaymentMethod       enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	PaymentSessionID    *string             `gorm:"column:payment_session_id"`
	CookingInstructions *string             `gorm:"column:cooking_instructions"`
	CouponID            *uuid.UUID          `gorm:"column:coupon_id;type:uuid;index"`
	Subtotal            decimal.Decimal     `gorm:"column:subtotal;type:numeric(10,2);not null"`
	Discount            decimal.Decimal     `gorm:"column:discount;type:numeric(10,2);not null;default:0"`
	Total               decimal.Decimal     `gorm:"column:total;type:numeric(10,2);not null"`
	Items               []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Timeline            []OrderTimelineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime;index:idx_orders_outlet_created"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
