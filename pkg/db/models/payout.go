package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/feastline/feastline-backend/pkg/enums"
)

// UniquePayoutOutletDate backs the one-settlement-row-per-outlet-per-day rule.
const UniquePayoutOutletDate = "uq_payouts_outlet_date"

// Payout is a daily settlement aggregate over an outlet's successful
// non-cash orders. Rows are created lazily the first time the day is queried.
type Payout struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OutletID  uuid.UUID          `gorm:"column:outlet_id;type:uuid;not null;uniqueIndex:uq_payouts_outlet_date"`
	Date      time.Time          `gorm:"column:date;type:date;not null;uniqueIndex:uq_payouts_outlet_date"`
	Amount    decimal.Decimal    `gorm:"column:amount;type:numeric(12,2);not null;default:0"`
	Status    enums.PayoutStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
