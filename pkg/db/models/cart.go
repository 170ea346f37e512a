package models

import (
	"time"

	"github.com/google/uuid"
)

// UniqueCartUserOutlet backs the one-open-cart-per-user-per-outlet rule.
const UniqueCartUserOutlet = "uq_carts_user_outlet"

// Cart is a user's in-progress selection at one outlet. It is deleted in
// the same transaction that materializes an order.
type Cart struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_carts_user_outlet"`
	OutletID  uuid.UUID  `gorm:"column:outlet_id;type:uuid;not null;uniqueIndex:uq_carts_user_outlet"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
