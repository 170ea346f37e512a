package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/feastline/feastline-backend/pkg/db/types"
)

// OrderItem is a point-in-time copy of a cart line taken at checkout.
// Name and price fields are snapshots so later catalog edits never change
// what the customer was charged.
type OrderItem struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	FoodItemID uuid.UUID         `gorm:"column:food_item_id;type:uuid;not null"`
	ItemName   string            `gorm:"column:item_name;not null"`
	VariantID  *uuid.UUID        `gorm:"column:variant_id;type:uuid"`
	AddonIDs   dbtypes.UUIDArray `gorm:"column:addon_ids;type:uuid[];not null;default:ARRAY[]::uuid[]"`
	Quantity   int               `gorm:"column:quantity;not null"`
	UnitPrice  decimal.Decimal   `gorm:"column:unit_price;type:numeric(10,2);not null"`
	LineTotal  decimal.Decimal   `gorm:"column:line_total;type:numeric(10,2);not null"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
}
