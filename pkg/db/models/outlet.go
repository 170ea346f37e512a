package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/feastline/feastline-backend/pkg/enums"
)

// Outlet is a single restaurant location. MenuSlug is the public identity
// used in URLs and realtime channel names. ManagerID is the owner account
// that receives new-order and payment pushes.
type Outlet struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string           `gorm:"column:name;not null"`
	MenuSlug  string           `gorm:"column:menu_slug;type:text;not null;uniqueIndex"`
	Type      enums.OutletType `gorm:"column:type;type:text;not null;default:'standard'"`
	ManagerID uuid.UUID        `gorm:"column:manager_id;type:uuid"`
	Address   string           `gorm:"column:address;not null;default:''"`
	Phone     *string          `gorm:"column:phone"`
	LogoURL   *string          `gorm:"column:logo_url"`
	IsOpen    bool             `gorm:"column:is_open;not null;default:true"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// GatewayEnabled reports whether the outlet accepts online payments. Lite
// outlets run without a payment gateway and settle at the counter.
func (o Outlet) GatewayEnabled() bool {
	return o.Type != enums.OutletTypeLite
}
