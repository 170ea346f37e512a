package models

import (
	"time"

	"github.com/google/uuid"
)

// TableArea groups tables within an outlet (e.g. "Rooftop", "Ground Floor").
type TableArea struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OutletID uuid.UUID `gorm:"column:outlet_id;type:uuid;not null;index"`
	Name     string    `gorm:"column:name;not null"`
}

// Table is a physical dine-in table addressable from a QR code.
type Table struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OutletID  uuid.UUID  `gorm:"column:outlet_id;type:uuid;not null;index"`
	AreaID    *uuid.UUID `gorm:"column:area_id;type:uuid"`
	Area      *TableArea `gorm:"foreignKey:AreaID"`
	Name      string     `gorm:"column:name;not null"`
	Capacity  int        `gorm:"column:capacity;not null;default:2"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
