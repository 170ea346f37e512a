package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLineDTO is one priced line in the cart view.
type CartLineDTO struct {
	ItemKey    string          `json:"item_key"`
	FoodItemID uuid.UUID       `json:"food_item_id"`
	Name       string          `json:"name"`
	VariantID  *uuid.UUID      `json:"variant_id,omitempty"`
	Variant    string          `json:"variant,omitempty"`
	Addons     []string        `json:"addons,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	LineTotal  decimal.Decimal `json:"line_total"`
}

// CartDTO is the priced cart returned by every cart operation.
type CartDTO struct {
	CartID   *uuid.UUID      `json:"cart_id,omitempty"`
	OutletID uuid.UUID       `json:"outlet_id"`
	Lines    []CartLineDTO   `json:"lines"`
	Total    decimal.Decimal `json:"total"`
}

func toCartDTO(outletID uuid.UUID, snap *Snapshot) *CartDTO {
	dto := &CartDTO{
		OutletID: outletID,
		Lines:    make([]CartLineDTO, 0, len(snap.Lines)),
		Total:    snap.Total,
	}
	if snap.Cart != nil {
		id := snap.Cart.ID
		dto.CartID = &id
	}
	for _, line := range snap.Lines {
		dto.Lines = append(dto.Lines, CartLineDTO{
			ItemKey:    line.Item.ItemKey,
			FoodItemID: line.Item.FoodItemID,
			Name:       line.ItemName,
			VariantID:  line.Item.VariantID,
			Variant:    line.VariantName,
			Addons:     line.AddonNames,
			Quantity:   line.Item.Quantity,
			UnitPrice:  line.UnitPrice,
			LineTotal:  line.LineTotal,
		})
	}
	return dto
}
