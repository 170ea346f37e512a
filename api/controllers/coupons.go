package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/feastline/feastline-backend/api/responses"
	"github.com/feastline/feastline-backend/api/validators"
	"github.com/feastline/feastline-backend/internal/cart"
	"github.com/feastline/feastline-backend/internal/catalog"
	"github.com/feastline/feastline-backend/internal/coupons"
	"github.com/feastline/feastline-backend/pkg/db/models"
	dbtypes "github.com/feastline/feastline-backend/pkg/db/types"
	"github.com/feastline/feastline-backend/pkg/enums"
	pkgerrors "github.com/feastline/feastline-backend/pkg/errors"
	"github.com/feastline/feastline-backend/pkg/logger"
)

type createCouponRequest struct {
	Code            string   `json:"code" validate:"required,min=2,max=64"`
	Description     string   `json:"description" validate:"max=500"`
	DiscountType    string   `json:"discount_type" validate:"required,oneof=percentage flat"`
	DiscountValue   string   `json:"discount_value" validate:"required"`
	MinOrderValue   string   `json:"min_order_value,omitempty"`
	MaxOrderValue   string   `json:"max_order_value,omitempty"`
	UseLimit        int      `json:"use_limit" validate:"min=0"`
	UseLimitPerUser int      `json:"use_limit_per_user" validate:"min=0"`
	ValidFrom       string   `json:"valid_from" validate:"required"`
	ValidTo         string   `json:"valid_to" validate:"required"`
	Eligibility     string   `json:"eligibility" validate:"omitempty,oneof=new second all"`
	ScopedItemIDs   []string `json:"scoped_item_ids,omitempty" validate:"dive,uuid"`
}

// Offers lists the coupons applicable to the user's current cart, with the
// best discount called out.
func Offers(couponSvc coupons.Service, carts cart.Service, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, outletID, err := cartScope(r, catalogSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := carts.Snapshot(r.Context(), userID, outletID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]coupons.CartLine, 0, len(snap.Lines))
		for _, line := range snap.Lines {
			lines = append(lines, coupons.CartLine{
				FoodItemID: line.Item.FoodItemID,
				LineTotal:  line.LineTotal,
			})
		}

		offers, err := couponSvc.ApplicableOffers(r.Context(), outletID, userID, lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offers)
	}
}

// CouponCreate registers a discount rule for the owner's outlet.
func CouponCreate(couponSvc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if actor.OutletID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "no managed outlet"))
			return
		}

		var req createCouponRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := req.toModel(*actor.OutletID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := couponSvc.Create(r.Context(), coupon)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// CouponList returns the owner's coupons.
func CouponList(couponSvc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if actor.OutletID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "no managed outlet"))
			return
		}

		list, err := couponSvc.ListByOutlet(r.Context(), *actor.OutletID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func (req createCouponRequest) toModel(outletID uuid.UUID) (*models.DiscountCoupon, error) {
	discountValue, err := decimal.NewFromString(req.DiscountValue)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount_value must be a decimal")
	}
	minOrder, err := parseOptionalDecimal(req.MinOrderValue)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_order_value must be a decimal")
	}
	maxOrder, err := parseOptionalDecimal(req.MaxOrderValue)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max_order_value must be a decimal")
	}
	validFrom, err := time.Parse(time.DateOnly, req.ValidFrom)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid_from must be a date (YYYY-MM-DD)")
	}
	validTo, err := time.Parse(time.DateOnly, req.ValidTo)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid_to must be a date (YYYY-MM-DD)")
	}

	eligibility := enums.CouponEligibilityAll
	if req.Eligibility != "" {
		eligibility = enums.CouponEligibility(req.Eligibility)
	}

	scoped := make(dbtypes.UUIDArray, 0, len(req.ScopedItemIDs))
	for _, raw := range req.ScopedItemIDs {
		itemID, err := uuid.Parse(raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "scoped_item_ids must be uuids")
		}
		scoped = append(scoped, itemID)
	}

	return &models.DiscountCoupon{
		OutletID:        outletID,
		Code:            strings.ToUpper(strings.TrimSpace(req.Code)),
		Description:     req.Description,
		DiscountType:    enums.DiscountType(req.DiscountType),
		DiscountValue:   discountValue,
		MinOrderValue:   minOrder,
		MaxOrderValue:   maxOrder,
		UseLimit:        req.UseLimit,
		UseLimitPerUser: req.UseLimitPerUser,
		ValidFrom:       validFrom,
		ValidTo:         validTo.Add(24*time.Hour - time.Second),
		Eligibility:     eligibility,
		ScopedItemIDs:   scoped,
	}, nil
}

func parseOptionalDecimal(raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}
