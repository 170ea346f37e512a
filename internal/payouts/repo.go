package payouts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feastline/feastline-backend/pkg/db/models"
	"github.com/feastline/feastline-backend/pkg/enums"
)

// Repository defines persistence for settlement rows and the order slice
// they aggregate over.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListSettleable(ctx context.Context, outletID uuid.UUID, since time.Time) ([]models.Order, error)
	FindByOutletAndDate(ctx context.Context, outletID uuid.UUID, date time.Time) (*models.Payout, error)
	Create(ctx context.Context, payout *models.Payout) error
	ListByOutlet(ctx context.Context, outletID uuid.UUID, since time.Time) ([]models.Payout, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payout repository bound to the DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

// ListSettleable returns the orders that count toward settlement: paid
// through the gateway (cash never settles) and created on or after since.
// Only the columns the aggregation reads are selected.
func (r *repository) ListSettleable(ctx context.Context, outletID uuid.UUID, since time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Select("id", "total", "created_at").
		Where("outlet_id = ?", outletID).
		Where("payment_status = ?", enums.PaymentStatusSuccess).
		Where("payment_method <> ?", enums.PaymentMethodCash).
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) FindByOutletAndDate(ctx context.Context, outletID uuid.UUID, date time.Time) (*models.Payout, error) {
	var payout models.Payout
	err := r.db.WithContext(ctx).
		Where("outlet_id = ? AND date = ?", outletID, date).
		First(&payout).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

func (r *repository) Create(ctx context.Context, payout *models.Payout) error {
	return r.db.WithContext(ctx).Create(payout).Error
}

func (r *repository) ListByOutlet(ctx context.Context, outletID uuid.UUID, since time.Time) ([]models.Payout, error) {
	var payouts []models.Payout
	err := r.db.WithContext(ctx).
		Where("outlet_id = ? AND date >= ?", outletID, since).
		Order("date ASC").
		Find(&payouts).Error
	if err != nil {
		return nil, err
	}
	return payouts, nil
}
