package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feastline/feastline-backend/pkg/db/models"
	"github.com/feastline/feastline-backend/pkg/enums"
	"github.com/feastline/feastline-backend/pkg/pagination"
)

// ListFilter narrows order listings.
type ListFilter struct {
	From   *time.Time
	To     *time.Time
	Status *enums.OrderStatus
}

// Repository defines persistence for orders, their items and timelines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpsertTimelineStage(ctx context.Context, item *models.OrderTimelineItem) error
	SetPaymentSession(ctx context.Context, orderID uuid.UUID, sessionID string) error
	SetPaymentMethod(ctx context.Context, orderID uuid.UUID, method enums.PaymentMethod) error
	UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, from []enums.PaymentStatus, to enums.PaymentStatus) (bool, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, from []enums.OrderStatus, to enums.OrderStatus) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Order, string, error)
	ListByOutlet(ctx context.Context, outletID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Order, string, error)
	ListLive(ctx context.Context, outletID uuid.UUID, since time.Time) ([]models.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Timeline", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Outlet").
		Preload("Table").
		Preload("User").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpsertTimelineStage inserts the stage row or refreshes it when a
// duplicate delivery races in, keyed on (order_id, stage).
func (r *repository) UpsertTimelineStage(ctx context.Context, item *models.OrderTimelineItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "order_id"}, {Name: "stage"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"done":       item.Done,
				"content":    item.Content,
				"updated_at": time.Now().UTC(),
			}),
		}).
		Create(item).Error
}

func (r *repository) SetPaymentSession(ctx context.Context, orderID uuid.UUID, sessionID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("payment_session_id", sessionID).Error
}

// SetPaymentMethod records the concrete instrument the gateway reported,
// replacing the generic online placeholder chosen at checkout.
func (r *repository) SetPaymentMethod(ctx context.Context, orderID uuid.UUID, method enums.PaymentMethod) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("payment_method", method).Error
}

// UpdatePaymentStatus moves payment_status only when the current value is
// in the allowed set; the caller reads the returned bool to learn whether
// this request performed the transition.
func (r *repository) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, from []enums.PaymentStatus, to enums.PaymentStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status IN ?", orderID, from).
		Update("payment_status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) UpdateStatus(ctx context.Context, orderID uuid.UUID, from []enums.OrderStatus, to enums.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status IN ?", orderID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Order, string, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	return r.list(ctx, query, filter, params)
}

func (r *repository) ListByOutlet(ctx context.Context, outletID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Order, string, error) {
	query := r.db.WithContext(ctx).Where("outlet_id = ?", outletID)
	return r.list(ctx, query, filter, params)
}

func (r *repository) list(ctx context.Context, query *gorm.DB, filter ListFilter, params pagination.Params) ([]models.Order, string, error) {
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var orders []models.Order
	err = query.
		Preload("Items").
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&orders).Error
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(orders) > limit {
		orders = orders[:limit]
		last := orders[len(orders)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return orders, next, nil
}

// ListLive returns the outlet's in-flight feed: orders created at or after
// the day boundary, not cancelled, and either settled offline or confirmed
// by the gateway. Online orders stay out of the feed until payment succeeds.
func (r *repository) ListLive(ctx context.Context, outletID uuid.UUID, since time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Table").
		Where("outlet_id = ? AND created_at >= ?", outletID, since).
		Where("status <> ?", enums.OrderStatusCancelled).
		Where(
			"payment_method IN ? OR payment_status = ?",
			[]enums.PaymentMethod{enums.PaymentMethodCash, enums.PaymentMethodUPI},
			enums.PaymentStatusSuccess,
		).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
