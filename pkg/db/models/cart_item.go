package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/feastline/feastline-backend/pkg/db/types"
)

// UniqueCartItemKey backs the line-merge rule: one line per (cart, item key).
const UniqueCartItemKey = "uq_cart_items_cart_key"

// CartItem is a single cart line. ItemKey is the client's line identity;
// repeated adds with the same key merge into one line. When the client
// omits it the server derives a deterministic selection fingerprint.
type CartItem struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID     uuid.UUID         `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:uq_cart_items_cart_key"`
	ItemKey    string            `gorm:"column:item_key;type:text;not null;uniqueIndex:uq_cart_items_cart_key"`
	FoodItemID uuid.UUID         `gorm:"column:food_item_id;type:uuid;not null"`
	FoodItem   *FoodItem         `gorm:"foreignKey:FoodItemID"`
	VariantID  *uuid.UUID        `gorm:"column:variant_id;type:uuid"`
	Variant    *ItemVariant      `gorm:"foreignKey:VariantID"`
	AddonIDs   dbtypes.UUIDArray `gorm:"column:addon_ids;type:uuid[];not null;default:ARRAY[]::uuid[]"`
	Quantity   int               `gorm:"column:quantity;not null"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
