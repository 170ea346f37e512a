package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/feastline/feastline-backend/internal/pricing"
	"github.com/feastline/feastline-backend/pkg/db"
	"github.com/feastline/feastline-backend/pkg/db/models"
	dbtypes "github.com/feastline/feastline-backend/pkg/db/types"
	pkgerrors "github.com/feastline/feastline-backend/pkg/errors"
)

// CatalogLoader resolves menu items for validation and pricing.
type CatalogLoader interface {
	FindFoodItem(ctx context.Context, id uuid.UUID) (*models.FoodItem, error)
}

// AddItemParams describes one selection to add to a cart. ItemKey is
// optional; when empty the selection fingerprint is used.
type AddItemParams struct {
	ItemKey    string
	FoodItemID uuid.UUID
	VariantID  *uuid.UUID
	AddonIDs   []uuid.UUID
	Quantity   int
}

// PricedLine pairs a stored cart line with its current catalog pricing.
type PricedLine struct {
	Item        models.CartItem
	ItemName    string
	VariantName string
	AddonNames  []string
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// Snapshot is the priced state of a cart, used by the cart views and as
// checkout input. Prices are always recomputed from the catalog; nothing
// monetary is trusted from the stored lines.
type Snapshot struct {
	Cart  *models.Cart
	Lines []PricedLine
	Total decimal.Decimal
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Repo    Repository
	Catalog CatalogLoader
}

// Service manages a user's per-outlet cart.
type Service interface {
	View(ctx context.Context, userID, outletID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, userID, outletID uuid.UUID, params AddItemParams) (*CartDTO, error)
	UpdateQuantity(ctx context.Context, userID, outletID uuid.UUID, itemKey string, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, outletID uuid.UUID, itemKey string) (*CartDTO, error)
	Clear(ctx context.Context, userID, outletID uuid.UUID) error
	Snapshot(ctx context.Context, userID, outletID uuid.UUID) (*Snapshot, error)
}

type service struct {
	repo    Repository
	catalog CatalogLoader
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repo is required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog loader is required")
	}
	return &service{repo: params.Repo, catalog: params.Catalog}, nil
}

func (s *service) View(ctx context.Context, userID, outletID uuid.UUID) (*CartDTO, error) {
	snap, err := s.Snapshot(ctx, userID, outletID)
	if err != nil {
		return nil, err
	}
	return toCartDTO(outletID, snap), nil
}

func (s *service) AddItem(ctx context.Context, userID, outletID uuid.UUID, params AddItemParams) (*CartDTO, error) {
	if params.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	item, err := s.loadFoodItem(ctx, params.FoodItemID)
	if err != nil {
		return nil, err
	}
	if item.OutletID != outletID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "food item does not belong to outlet")
	}
	if !item.Available {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "food item is unavailable")
	}
	if err := validateSelection(item, params.VariantID, params.AddonIDs); err != nil {
		return nil, err
	}

	cart, err := s.getOrCreateCart(ctx, userID, outletID)
	if err != nil {
		return nil, err
	}

	key := params.ItemKey
	if key == "" {
		key = BuildItemKey(params.FoodItemID, params.VariantID, params.AddonIDs)
	}
	if err := s.mergeLine(ctx, cart.ID, key, params); err != nil {
		return nil, err
	}

	return s.View(ctx, userID, outletID)
}

func (s *service) UpdateQuantity(ctx context.Context, userID, outletID uuid.UUID, itemKey string, quantity int) (*CartDTO, error) {
	cart, err := s.findCart(ctx, userID, outletID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		if err := s.repo.DeleteItem(ctx, cart.ID, itemKey); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
		}
		return s.View(ctx, userID, outletID)
	}

	line, err := s.repo.FindItem(ctx, cart.ID, itemKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find cart item")
	}
	line.Quantity = quantity
	if err := s.repo.SaveItem(ctx, line); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
	}

	return s.View(ctx, userID, outletID)
}

func (s *service) RemoveItem(ctx context.Context, userID, outletID uuid.UUID, itemKey string) (*CartDTO, error) {
	cart, err := s.findCart(ctx, userID, outletID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteItem(ctx, cart.ID, itemKey); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
	}
	return s.View(ctx, userID, outletID)
}

func (s *service) Clear(ctx context.Context, userID, outletID uuid.UUID) error {
	cart, err := s.repo.FindByUserAndOutlet(ctx, userID, outletID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find cart")
	}
	if err := s.repo.DeleteCart(ctx, cart.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart")
	}
	return nil
}

func (s *service) Snapshot(ctx context.Context, userID, outletID uuid.UUID) (*Snapshot, error) {
	cart, err := s.repo.FindByUserAndOutlet(ctx, userID, outletID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Snapshot{Total: decimal.Zero}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find cart")
	}

	items, err := s.repo.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
	}

	snap := &Snapshot{Cart: cart, Lines: make([]PricedLine, 0, len(items)), Total: decimal.Zero}
	for _, item := range items {
		line, err := s.priceLine(ctx, item)
		if err != nil {
			return nil, err
		}
		snap.Lines = append(snap.Lines, *line)
		snap.Total = snap.Total.Add(line.LineTotal)
	}
	return snap, nil
}

func (s *service) getOrCreateCart(ctx context.Context, userID, outletID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.FindByUserAndOutlet(ctx, userID, outletID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find cart")
	}

	fresh := &models.Cart{UserID: userID, OutletID: outletID}
	createErr := s.repo.Create(ctx, fresh)
	if createErr == nil {
		return fresh, nil
	}
	// A concurrent request can win the insert race; the unique constraint
	// on (user_id, outlet_id) makes the loser re-read instead of duplicating.
	if db.IsUniqueViolation(createErr, models.UniqueCartUserOutlet) {
		cart, err = s.repo.FindByUserAndOutlet(ctx, userID, outletID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reread cart after conflict")
		}
		return cart, nil
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create cart")
}

func (s *service) mergeLine(ctx context.Context, cartID uuid.UUID, key string, params AddItemParams) error {
	existing, err := s.repo.FindItem(ctx, cartID, key)
	if err == nil {
		return s.applyMerge(ctx, existing, params)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find cart item")
	}

	line := &models.CartItem{
		CartID:     cartID,
		ItemKey:    key,
		FoodItemID: params.FoodItemID,
		VariantID:  params.VariantID,
		AddonIDs:   dbtypes.UUIDArray(params.AddonIDs),
		Quantity:   params.Quantity,
	}
	if line.AddonIDs == nil {
		line.AddonIDs = dbtypes.UUIDArray{}
	}
	createErr := s.repo.CreateItem(ctx, line)
	if createErr == nil {
		return nil
	}
	// Same race as cart creation, on (cart_id, item_key).
	if db.IsUniqueViolation(createErr, models.UniqueCartItemKey) {
		existing, err = s.repo.FindItem(ctx, cartID, key)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reread cart item after conflict")
		}
		return s.applyMerge(ctx, existing, params)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create cart item")
}

// applyMerge increments the line quantity and replaces the selection with
// the latest add, so a re-keyed client payload wins over the stored one.
func (s *service) applyMerge(ctx context.Context, existing *models.CartItem, params AddItemParams) error {
	existing.Quantity += params.Quantity
	existing.FoodItemID = params.FoodItemID
	existing.VariantID = params.VariantID
	existing.AddonIDs = dbtypes.UUIDArray(params.AddonIDs)
	if existing.AddonIDs == nil {
		existing.AddonIDs = dbtypes.UUIDArray{}
	}
	if err := s.repo.SaveItem(ctx, existing); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
	}
	return nil
}

func (s *service) findCart(ctx context.Context, userID, outletID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.FindByUserAndOutlet(ctx, userID, outletID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find cart")
	}
	return cart, nil
}

func (s *service) loadFoodItem(ctx context.Context, id uuid.UUID) (*models.FoodItem, error) {
	item, err := s.catalog.FindFoodItem(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "food item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find food item")
	}
	return item, nil
}

func (s *service) priceLine(ctx context.Context, item models.CartItem) (*PricedLine, error) {
	food, err := s.loadFoodItem(ctx, item.FoodItemID)
	if err != nil {
		return nil, err
	}

	line := pricing.Line{BasePrice: food.Price, Quantity: item.Quantity}
	priced := &PricedLine{Item: item, ItemName: food.Name}

	if item.VariantID != nil {
		variant := findVariant(food, *item.VariantID)
		if variant == nil {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart variant no longer on menu")
		}
		line.VariantPrice = &variant.Price
		priced.VariantName = variant.Name
	}

	for _, addonID := range item.AddonIDs {
		addon := findAddon(food, addonID)
		if addon == nil {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart add-on no longer on menu")
		}
		line.AddonPrices = append(line.AddonPrices, addon.Price)
		priced.AddonNames = append(priced.AddonNames, addon.Name)
	}

	priced.UnitPrice = pricing.UnitPrice(line)
	priced.LineTotal = pricing.LineTotal(line)
	return priced, nil
}

func validateSelection(item *models.FoodItem, variantID *uuid.UUID, addonIDs []uuid.UUID) error {
	if variantID != nil && findVariant(item, *variantID) == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "variant does not belong to food item")
	}
	seen := make(map[uuid.UUID]struct{}, len(addonIDs))
	for _, id := range addonIDs {
		if _, dup := seen[id]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate add-on selection")
		}
		seen[id] = struct{}{}
		addon := findAddon(item, id)
		if addon == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "add-on does not belong to food item")
		}
		if !addon.Available {
			return pkgerrors.New(pkgerrors.CodeValidation, "add-on is unavailable")
		}
	}
	return nil
}

func findVariant(item *models.FoodItem, id uuid.UUID) *models.ItemVariant {
	for i := range item.Variants {
		if item.Variants[i].ID == id {
			return &item.Variants[i]
		}
	}
	return nil
}

func findAddon(item *models.FoodItem, id uuid.UUID) *models.Addon {
	for i := range item.Addons {
		if item.Addons[i].ID == id {
			return &item.Addons[i]
		}
	}
	return nil
}
