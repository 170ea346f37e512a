package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/feastline/feastline-backend/pkg/db/types"
	"github.com/feastline/feastline-backend/pkg/enums"
)

// DiscountCoupon is a reusable discount rule scoped to one outlet. Usage
// counts are derived from orders carrying the coupon id, never stored here.
type DiscountCoupon struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OutletID        uuid.UUID              `gorm:"column:outlet_id;type:uuid;not null;uniqueIndex:uq_coupons_outlet_code"`
	Code            string                 `gorm:"column:code;type:text;not null;uniqueIndex:uq_coupons_outlet_code"`
	Description     string                 `gorm:"column:description;not null;default:''"`
	DiscountType    enums.DiscountType     `gorm:"column:discount_type;type:text;not null"`
	DiscountValue   decimal.Decimal        `gorm:"column:discount_value;type:numeric(10,2);not null"`
	MinOrderValue   decimal.Decimal        `gorm:"column:min_order_value;type:numeric(10,2);not null;default:0"`
	MaxOrderValue   decimal.Decimal        `gorm:"column:max_order_value;type:numeric(10,2);not null;default:0"`
	UseLimit        int                    `gorm:"column:use_limit;not null;default:0"`
	UseLimitPerUser int                    `gorm:"column:use_limit_per_user;not null;default:0"`
	ValidFrom       time.Time              `gorm:"column:valid_from;not null"`
	ValidTo         time.Time              `gorm:"column:valid_to;not null"`
	Eligibility     enums.CouponEligibility `gorm:"column:eligibility;type:text;not null;default:'all'"`
	ScopedItemIDs   dbtypes.UUIDArray      `gorm:"column:scoped_item_ids;type:uuid[];not null;default:ARRAY[]::uuid[]"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
