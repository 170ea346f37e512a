package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feastline/feastline-backend/pkg/db/models"
)

// Repository defines read-only persistence over the catalog tables. Catalog
// writes happen in an external admin surface.
type Repository interface {
	FindOutletBySlug(ctx context.Context, menuSlug string) (*models.Outlet, error)
	FindOutletByID(ctx context.Context, id uuid.UUID) (*models.Outlet, error)
	ListFoodItems(ctx context.Context, outletID uuid.UUID) ([]models.FoodItem, error)
	FindFoodItem(ctx context.Context, id uuid.UUID) (*models.FoodItem, error)
	FindVariant(ctx context.Context, id uuid.UUID) (*models.ItemVariant, error)
	FindAddons(ctx context.Context, ids []uuid.UUID) ([]models.Addon, error)
	FindTable(ctx context.Context, id, outletID uuid.UUID) (*models.Table, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindOutletBySlug(ctx context.Context, menuSlug string) (*models.Outlet, error) {
	var outlet models.Outlet
	err := r.db.WithContext(ctx).
		Where("menu_slug = ?", menuSlug).
		First(&outlet).Error
	if err != nil {
		return nil, err
	}
	return &outlet, nil
}

func (r *repository) FindOutletByID(ctx context.Context, id uuid.UUID) (*models.Outlet, error) {
	var outlet models.Outlet
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&outlet).Error
	if err != nil {
		return nil, err
	}
	return &outlet, nil
}

func (r *repository) ListFoodItems(ctx context.Context, outletID uuid.UUID) ([]models.FoodItem, error) {
	var items []models.FoodItem
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Preload("Addons").
		Where("outlet_id = ? AND available = ?", outletID, true).
		Order("category ASC, name ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindFoodItem(ctx context.Context, id uuid.UUID) (*models.FoodItem, error) {
	var item models.FoodItem
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Preload("Addons").
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindVariant(ctx context.Context, id uuid.UUID) (*models.ItemVariant, error) {
	var variant models.ItemVariant
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *repository) FindAddons(ctx context.Context, ids []uuid.UUID) ([]models.Addon, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var addons []models.Addon
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&addons).Error
	if err != nil {
		return nil, err
	}
	return addons, nil
}

func (r *repository) FindTable(ctx context.Context, id, outletID uuid.UUID) (*models.Table, error) {
	var table models.Table
	err := r.db.WithContext(ctx).
		Preload("Area").
		Where("id = ? AND outlet_id = ?", id, outletID).
		First(&table).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}
