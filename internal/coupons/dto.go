package coupons

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/feastline/feastline-backend/pkg/db/models"
	"github.com/feastline/feastline-backend/pkg/enums"
)

// OfferDTO is one coupon that currently applies to the user's cart.
type OfferDTO struct {
	CouponID      uuid.UUID          `json:"coupon_id"`
	Code          string             `json:"code"`
	Description   string             `json:"description,omitempty"`
	DiscountType  enums.DiscountType `json:"discount_type"`
	DiscountValue decimal.Decimal    `json:"discount_value"`
	Discount      decimal.Decimal    `json:"discount"`
}

// OffersDTO lists applicable offers with the best one called out.
type OffersDTO struct {
	Offers []OfferDTO `json:"offers"`
	Best   *OfferDTO  `json:"best,omitempty"`
}

func toOfferDTO(coupon *models.DiscountCoupon, discount decimal.Decimal) OfferDTO {
	return OfferDTO{
		CouponID:      coupon.ID,
		Code:          coupon.Code,
		Description:   coupon.Description,
		DiscountType:  coupon.DiscountType,
		DiscountValue: coupon.DiscountValue,
		Discount:      discount,
	}
}
