package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/feastline/feastline-backend/pkg/db/models"
)

// MenuItemDTO is the public catalog projection of a food item.
type MenuItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	Category    string          `json:"category"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    *string         `json:"image_url,omitempty"`
	Variants    []VariantGroup  `json:"variants,omitempty"`
	Addons      []AddonDTO      `json:"addons,omitempty"`
}

// AddonDTO is the public projection of an add-on.
type AddonDTO struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

func toMenuItemDTO(item models.FoodItem) MenuItemDTO {
	dto := MenuItemDTO{
		ID:          item.ID,
		Category:    item.Category,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		ImageURL:    item.ImageURL,
		Variants:    BuildVariantTree(item.Variants),
	}
	for _, addon := range item.Addons {
		if !addon.Available {
			continue
		}
		dto.Addons = append(dto.Addons, AddonDTO{ID: addon.ID, Name: addon.Name, Price: addon.Price})
	}
	return dto
}

// OutletDTO is the public projection of an outlet.
type OutletDTO struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	MenuSlug       string    `json:"menu_slug"`
	Address        string    `json:"address,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	LogoURL        *string   `json:"logo_url,omitempty"`
	IsOpen         bool      `json:"is_open"`
	GatewayEnabled bool      `json:"gateway_enabled"`
}

// ToOutletDTO projects an outlet for public consumption.
func ToOutletDTO(outlet *models.Outlet) OutletDTO {
	return OutletDTO{
		ID:             outlet.ID,
		Name:           outlet.Name,
		MenuSlug:       outlet.MenuSlug,
		Address:        outlet.Address,
		Phone:          outlet.Phone,
		LogoURL:        outlet.LogoURL,
		IsOpen:         outlet.IsOpen,
		GatewayEnabled: outlet.GatewayEnabled(),
	}
}
