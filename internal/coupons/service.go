package coupons

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/feastline/feastline-backend/pkg/db/models"
	"github.com/feastline/feastline-backend/pkg/enums"
	pkgerrors "github.com/feastline/feastline-backend/pkg/errors"
)

// CartLine is the coupon-relevant view of a cart line.
type CartLine struct {
	FoodItemID uuid.UUID
	LineTotal  decimal.Decimal
}

// ServiceParams groups dependencies for the coupon service.
type ServiceParams struct {
	Repo Repository
	Now  func() time.Time
}

// Service evaluates coupons and exposes owner-side management.
//
// Applicability and activity are independent checks and both must pass
// before a discount is applied at checkout. Applicability covers the
// validity window, the global and per-user caps, the eligibility class,
// and the product scope; activity covers the order-value bounds plus the
// global cap (a max order value of zero means no upper bound).
type Service interface {
	IsApplicable(ctx context.Context, coupon *models.DiscountCoupon, userID uuid.UUID, lines []CartLine) (bool, error)
	IsActive(ctx context.Context, coupon *models.DiscountCoupon, cartTotal decimal.Decimal) (bool, error)
	Discount(coupon *models.DiscountCoupon, cartTotal decimal.Decimal) decimal.Decimal
	Redeem(ctx context.Context, outletID uuid.UUID, code string, userID uuid.UUID, lines []CartLine) (*models.DiscountCoupon, decimal.Decimal, error)
	ApplicableOffers(ctx context.Context, outletID, userID uuid.UUID, lines []CartLine) (*OffersDTO, error)
	Create(ctx context.Context, coupon *models.DiscountCoupon) (*models.DiscountCoupon, error)
	ListByOutlet(ctx context.Context, outletID uuid.UUID) ([]models.DiscountCoupon, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a coupon service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon repo is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, now: now}, nil
}

func (s *service) IsApplicable(ctx context.Context, coupon *models.DiscountCoupon, userID uuid.UUID, lines []CartLine) (bool, error) {
	if coupon == nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "coupon is required")
	}

	now := s.now()
	if now.Before(coupon.ValidFrom) || now.After(coupon.ValidTo) {
		return false, nil
	}

	if coupon.UseLimit > 0 {
		used, err := s.repo.CountUsage(ctx, coupon.ID)
		if err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count coupon usage")
		}
		if used >= int64(coupon.UseLimit) {
			return false, nil
		}
	}

	if coupon.UseLimitPerUser > 0 {
		used, err := s.repo.CountUsageByUser(ctx, coupon.ID, userID)
		if err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count coupon usage for user")
		}
		if used >= int64(coupon.UseLimitPerUser) {
			return false, nil
		}
	}

	switch coupon.Eligibility {
	case enums.CouponEligibilityNew, enums.CouponEligibilitySecond:
		prior, err := s.repo.CountOrdersByUser(ctx, userID)
		if err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count user orders")
		}
		if coupon.Eligibility == enums.CouponEligibilityNew && prior != 0 {
			return false, nil
		}
		if coupon.Eligibility == enums.CouponEligibilitySecond && prior != 1 {
			return false, nil
		}
	}

	if len(coupon.ScopedItemIDs) > 0 {
		inScope := false
		for _, line := range lines {
			if coupon.ScopedItemIDs.Contains(line.FoodItemID) {
				inScope = true
				break
			}
		}
		if !inScope {
			return false, nil
		}
	}

	return true, nil
}

func (s *service) IsActive(ctx context.Context, coupon *models.DiscountCoupon, cartTotal decimal.Decimal) (bool, error) {
	if coupon == nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "coupon is required")
	}

	if cartTotal.LessThan(coupon.MinOrderValue) {
		return false, nil
	}
	if coupon.MaxOrderValue.IsPositive() && cartTotal.GreaterThan(coupon.MaxOrderValue) {
		return false, nil
	}

	if coupon.UseLimit > 0 {
		used, err := s.repo.CountUsage(ctx, coupon.ID)
		if err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count coupon usage")
		}
		if used >= int64(coupon.UseLimit) {
			return false, nil
		}
	}

	return true, nil
}

// Discount computes the reduction without re-checking eligibility. The
// discount never exceeds the cart total.
func (s *service) Discount(coupon *models.DiscountCoupon, cartTotal decimal.Decimal) decimal.Decimal {
	if coupon == nil {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch coupon.DiscountType {
	case enums.DiscountTypePercentage:
		discount = cartTotal.Mul(coupon.DiscountValue).Div(decimal.NewFromInt(100)).Round(2)
	case enums.DiscountTypeFlat:
		discount = coupon.DiscountValue
	default:
		return decimal.Zero
	}

	if discount.GreaterThan(cartTotal) {
		return cartTotal
	}
	return discount
}

// Redeem resolves a coupon code and runs both checks, returning the coupon
// and its discount for the given cart.
func (s *service) Redeem(ctx context.Context, outletID uuid.UUID, code string, userID uuid.UUID, lines []CartLine) (*models.DiscountCoupon, decimal.Decimal, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}

	coupon, err := s.repo.FindByCode(ctx, outletID, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "coupon not found")
		}
		return nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}

	applicable, err := s.IsApplicable(ctx, coupon, userID, lines)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if !applicable {
		return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "coupon is not applicable")
	}

	total := linesTotal(lines)
	active, err := s.IsActive(ctx, coupon, total)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if !active {
		return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "coupon is not active for this order value")
	}

	return coupon, s.Discount(coupon, total), nil
}

// ApplicableOffers returns the outlet's coupons that pass both checks for
// this user and cart, plus the best offer (highest discount).
func (s *service) ApplicableOffers(ctx context.Context, outletID, userID uuid.UUID, lines []CartLine) (*OffersDTO, error) {
	coupons, err := s.repo.ListByOutlet(ctx, outletID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}

	total := linesTotal(lines)
	result := &OffersDTO{Offers: []OfferDTO{}}
	for i := range coupons {
		coupon := &coupons[i]
		applicable, err := s.IsApplicable(ctx, coupon, userID, lines)
		if err != nil {
			return nil, err
		}
		if !applicable {
			continue
		}
		active, err := s.IsActive(ctx, coupon, total)
		if err != nil {
			return nil, err
		}
		if !active {
			continue
		}

		offer := toOfferDTO(coupon, s.Discount(coupon, total))
		result.Offers = append(result.Offers, offer)
		if result.Best == nil || offer.Discount.GreaterThan(result.Best.Discount) {
			best := offer
			result.Best = &best
		}
	}
	return result, nil
}

func (s *service) Create(ctx context.Context, coupon *models.DiscountCoupon) (*models.DiscountCoupon, error) {
	if coupon == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon is required")
	}
	coupon.Code = strings.ToUpper(strings.TrimSpace(coupon.Code))
	if coupon.Code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	if !coupon.DiscountType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type")
	}
	if !coupon.Eligibility.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid eligibility class")
	}
	if !coupon.ValidTo.After(coupon.ValidFrom) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validity window is empty")
	}

	created, err := s.repo.Create(ctx, coupon)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "create coupon")
	}
	return created, nil
}

func (s *service) ListByOutlet(ctx context.Context, outletID uuid.UUID) ([]models.DiscountCoupon, error) {
	coupons, err := s.repo.ListByOutlet(ctx, outletID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	return coupons, nil
}

func linesTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal)
	}
	return total
}
