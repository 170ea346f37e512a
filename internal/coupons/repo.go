package coupons

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feastline/feastline-backend/pkg/db/models"
)

// Repository defines persistence for coupons and the order-derived usage
// counts the evaluator needs. Usage is never cached on the coupon row.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, coupon *models.DiscountCoupon) (*models.DiscountCoupon, error)
	ListByOutlet(ctx context.Context, outletID uuid.UUID) ([]models.DiscountCoupon, error)
	FindByCode(ctx context.Context, outletID uuid.UUID, code string) (*models.DiscountCoupon, error)
	CountUsage(ctx context.Context, couponID uuid.UUID) (int64, error)
	CountUsageByUser(ctx context.Context, couponID, userID uuid.UUID) (int64, error)
	CountOrdersByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a coupons repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, coupon *models.DiscountCoupon) (*models.DiscountCoupon, error) {
	if err := r.db.WithContext(ctx).Create(coupon).Error; err != nil {
		return nil, err
	}
	return coupon, nil
}

func (r *repository) ListByOutlet(ctx context.Context, outletID uuid.UUID) ([]models.DiscountCoupon, error) {
	var coupons []models.DiscountCoupon
	err := r.db.WithContext(ctx).
		Where("outlet_id = ?", outletID).
		Order("created_at DESC").
		Find(&coupons).Error
	if err != nil {
		return nil, err
	}
	return coupons, nil
}

func (r *repository) FindByCode(ctx context.Context, outletID uuid.UUID, code string) (*models.DiscountCoupon, error) {
	var coupon models.DiscountCoupon
	err := r.db.WithContext(ctx).
		Where("outlet_id = ? AND code = ?", outletID, code).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) CountUsage(ctx context.Context, couponID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("coupon_id = ?", couponID).
		Count(&count).Error
	return count, err
}

func (r *repository) CountUsageByUser(ctx context.Context, couponID, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).Error
	return count, err
}

func (r *repository) CountOrdersByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
