package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/feastline/feastline-backend/api/responses"
	"github.com/feastline/feastline-backend/api/validators"
	"github.com/feastline/feastline-backend/internal/cart"
	"github.com/feastline/feastline-backend/internal/catalog"
	pkgerrors "github.com/feastline/feastline-backend/pkg/errors"
	"github.com/feastline/feastline-backend/pkg/logger"
)

type addCartItemRequest struct {
	ItemKey    string   `json:"item_key"`
	FoodItemID string   `json:"food_item_id" validate:"required,uuid"`
	VariantID  *string  `json:"variant_id,omitempty" validate:"omitempty,uuid"`
	AddonIDs   []string `json:"addon_ids" validate:"dive,uuid"`
	Quantity   int      `json:"quantity" validate:"required,min=1,max=50"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"min=0,max=50"`
}

// CartView returns the user's priced cart for the outlet.
func CartView(carts cart.Service, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, outletID, err := cartScope(r, catalogSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := carts.View(r.Context(), userID, outletID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartAddItem adds a line to the cart, merging on item key.
func CartAddItem(carts cart.Service, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, outletID, err := cartScope(r, catalogSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req addCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := req.toParams()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := carts.AddItem(r.Context(), userID, outletID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// CartUpdateItem sets a line's quantity; zero removes the line.
func CartUpdateItem(carts cart.Service, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, outletID, err := cartScope(r, catalogSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemKey, err := itemKeyFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := carts.UpdateQuantity(r.Context(), userID, outletID, itemKey, req.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartRemoveItem deletes one line from the cart.
func CartRemoveItem(carts cart.Service, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, outletID, err := cartScope(r, catalogSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemKey, err := itemKeyFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := carts.RemoveItem(r.Context(), userID, outletID, itemKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func cartScope(r *http.Request, catalogSvc catalog.Service) (userID, outletID uuid.UUID, err error) {
	userID, err = userIDFromRequest(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	slug, err := menuSlugFromRequest(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	outlet, err := catalogSvc.OutletBySlug(r.Context(), slug)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, outlet.ID, nil
}

func itemKeyFromRequest(r *http.Request) (string, error) {
	key := strings.TrimSpace(chi.URLParam(r, "itemKey"))
	if key == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "item key is required")
	}
	return key, nil
}

func (req addCartItemRequest) toParams() (cart.AddItemParams, error) {
	foodItemID, err := uuid.Parse(req.FoodItemID)
	if err != nil {
		return cart.AddItemParams{}, pkgerrors.New(pkgerrors.CodeValidation, "food_item_id must be a uuid")
	}

	params := cart.AddItemParams{
		ItemKey:    strings.TrimSpace(req.ItemKey),
		FoodItemID: foodItemID,
		Quantity:   req.Quantity,
	}
	if req.VariantID != nil {
		variantID, err := uuid.Parse(*req.VariantID)
		if err != nil {
			return cart.AddItemParams{}, pkgerrors.New(pkgerrors.CodeValidation, "variant_id must be a uuid")
		}
		params.VariantID = &variantID
	}
	for _, raw := range req.AddonIDs {
		addonID, err := uuid.Parse(raw)
		if err != nil {
			return cart.AddItemParams{}, pkgerrors.New(pkgerrors.CodeValidation, "addon_ids must be uuids")
		}
		params.AddonIDs = append(params.AddonIDs, addonID)
	}
	return params, nil
}
