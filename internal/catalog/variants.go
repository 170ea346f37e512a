package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/feastline/feastline-backend/pkg/db/models"
)

// VariantGroup is one selectable category level in the nested option tree.
type VariantGroup struct {
	Category string          `json:"category"`
	Options  []VariantOption `json:"options"`
}

// VariantOption is a single choice; picking it may expose further groups.
type VariantOption struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Children []VariantGroup  `json:"children,omitempty"`
}

// BuildVariantTree converts a food item's flat variant rows into the nested
// group/option tree clients render. Roots are variants without a parent;
// each option's children are the variants pointing at it. The included set
// carries the categories already bound on the current path so a cycle in
// parent links cannot recurse forever.
func BuildVariantTree(variants []models.ItemVariant) []VariantGroup {
	children := make(map[uuid.UUID][]models.ItemVariant)
	var roots []models.ItemVariant
	for _, v := range variants {
		if v.ParentID == nil {
			roots = append(roots, v)
			continue
		}
		children[*v.ParentID] = append(children[*v.ParentID], v)
	}
	return buildGroups(roots, children, map[string]bool{})
}

func buildGroups(level []models.ItemVariant, children map[uuid.UUID][]models.ItemVariant, included map[string]bool) []VariantGroup {
	if len(level) == 0 {
		return nil
	}

	var order []string
	byCategory := make(map[string][]models.ItemVariant)
	for _, v := range level {
		if included[v.Category] {
			continue
		}
		if _, seen := byCategory[v.Category]; !seen {
			order = append(order, v.Category)
		}
		byCategory[v.Category] = append(byCategory[v.Category], v)
	}

	groups := make([]VariantGroup, 0, len(order))
	for _, category := range order {
		group := VariantGroup{Category: category}
		for _, v := range byCategory[category] {
			nested := copyIncluded(included)
			nested[category] = true
			group.Options = append(group.Options, VariantOption{
				ID:       v.ID,
				Name:     v.Name,
				Price:    v.Price,
				Children: buildGroups(children[v.ID], children, nested),
			})
		}
		groups = append(groups, group)
	}
	return groups
}

func copyIncluded(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
