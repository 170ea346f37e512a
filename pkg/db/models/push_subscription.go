package models

import (
	"time"

	"github.com/google/uuid"
)

// PushSubscription is one registered web-push endpoint for a user. A user
// may hold several (one per browser/device). Endpoints reported permanently
// gone by the push service are deleted.
type PushSubscription struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Endpoint  string    `gorm:"column:endpoint;type:text;not null;uniqueIndex"`
	P256dh    string    `gorm:"column:p256dh;type:text;not null"`
	Auth      string    `gorm:"column:auth;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
