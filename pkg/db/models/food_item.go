package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FoodItem is a sellable menu entry. Catalog CRUD lives in an external
// admin surface; this service reads items for pricing and display.
type FoodItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OutletID    uuid.UUID       `gorm:"column:outlet_id;type:uuid;not null;index"`
	Category    string          `gorm:"column:category;not null;default:''"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description;not null;default:''"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	ImageURL    *string         `gorm:"column:image_url"`
	Available   bool            `gorm:"column:available;not null;default:true"`
	Variants    []ItemVariant   `gorm:"foreignKey:FoodItemID;constraint:OnDelete:CASCADE"`
	Addons      []Addon         `gorm:"foreignKey:FoodItemID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// ItemVariant is one selectable option of a food item. Variants form a tree
// through ParentID: a "Large" size may itself offer crust choices. The
// variant price replaces the item's base price when selected.
type ItemVariant struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FoodItemID uuid.UUID       `gorm:"column:food_item_id;type:uuid;not null;index"`
	ParentID   *uuid.UUID      `gorm:"column:parent_id;type:uuid"`
	Category   string          `gorm:"column:category;not null"`
	Name       string          `gorm:"column:name;not null"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
}

// Addon is an additive extra. Selected add-on prices join the per-unit
// price before the quantity multiplier.
type Addon struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FoodItemID uuid.UUID       `gorm:"column:food_item_id;type:uuid;not null;index"`
	Name       string          `gorm:"column:name;not null"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Available  bool            `gorm:"column:available;not null;default:true"`
}
