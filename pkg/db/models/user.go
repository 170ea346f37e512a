package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/feastline/feastline-backend/pkg/enums"
)

// User represents the canonical identity entity. Accounts are issued by the
// external identity service; this table mirrors the claims the API trusts.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	Name      string         `gorm:"column:name;not null"`
	Phone     *string        `gorm:"column:phone"`
	Role      enums.UserRole `gorm:"column:role;type:text;not null;default:'customer'"`
	OutletID  *uuid.UUID     `gorm:"column:outlet_id;type:uuid"`
	IsActive  bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// ManagesOutlet reports whether the user is an owner of the given outlet.
func (u User) ManagesOutlet(outletID uuid.UUID) bool {
	return u.Role == enums.UserRoleOwner && u.OutletID != nil && *u.OutletID == outletID
}
