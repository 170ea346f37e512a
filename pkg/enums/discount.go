package enums

import "fmt"

// DiscountType is how a coupon's value is interpreted.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFlat       DiscountType = "flat"
)

var validDiscountTypes = []DiscountType{
	DiscountTypePercentage,
	DiscountTypeFlat,
}

// String implements fmt.Stringer.
func (d DiscountType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DiscountType.
func (d DiscountType) IsValid() bool {
	for _, candidate := range validDiscountTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDiscountType converts raw input into a DiscountType.
func ParseDiscountType(value string) (DiscountType, error) {
	for _, candidate := range validDiscountTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount type %q", value)
}

// CouponEligibility restricts which customers a coupon applies to.
type CouponEligibility string

const (
	CouponEligibilityAll    CouponEligibility = "all"
	CouponEligibilityNew    CouponEligibility = "new"
	CouponEligibilitySecond CouponEligibility = "second"
)

var validCouponEligibilities = []CouponEligibility{
	CouponEligibilityAll,
	CouponEligibilityNew,
	CouponEligibilitySecond,
}

// String implements fmt.Stringer.
func (c CouponEligibility) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CouponEligibility.
func (c CouponEligibility) IsValid() bool {
	for _, candidate := range validCouponEligibilities {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCouponEligibility converts raw input into a CouponEligibility.
func ParseCouponEligibility(value string) (CouponEligibility, error) {
	for _, candidate := range validCouponEligibilities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon eligibility %q", value)
}
