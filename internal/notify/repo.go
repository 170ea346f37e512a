package notify

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feastline/feastline-backend/pkg/db/models"
)

// Repository defines persistence for web-push subscriptions.
type Repository interface {
	Upsert(ctx context.Context, sub *models.PushSubscription) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a push-subscription repository bound to the DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Upsert re-registers an already known endpoint under its latest keys and
// user, keyed on the unique endpoint column.
func (r *repository) Upsert(ctx context.Context, sub *models.PushSubscription) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"user_id": sub.UserID,
				"p256dh":  sub.P256dh,
				"auth":    sub.Auth,
			}),
		}).
		Create(sub).Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *repository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	return r.db.WithContext(ctx).
		Where("endpoint = ?", endpoint).
		Delete(&models.PushSubscription{}).Error
}
