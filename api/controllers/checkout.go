package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/feastline/feastline-backend/api/responses"
	"github.com/feastline/feastline-backend/api/validators"
	"github.com/feastline/feastline-backend/internal/checkout"
	"github.com/feastline/feastline-backend/pkg/enums"
	pkgerrors "github.com/feastline/feastline-backend/pkg/errors"
	"github.com/feastline/feastline-backend/pkg/logger"
)

type checkoutRequest struct {
	OrderType           string  `json:"order_type" validate:"required,oneof=dine_in takeaway delivery"`
	PaymentMethod       string  `json:"payment_method" validate:"required"`
	TableID             *string `json:"table_id,omitempty" validate:"omitempty,uuid"`
	CookingInstructions *string `json:"cooking_instructions,omitempty" validate:"omitempty,max=500"`
	CouponCode          *string `json:"coupon_code,omitempty" validate:"omitempty,min=1,max=64"`
}

// Checkout converts the user's cart into an order.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		slug, err := menuSlugFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := req.toParams(slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Checkout(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// RetryPaymentSession opens a fresh gateway session for an unpaid order.
func RetryPaymentSession(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RetrySession(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func (req checkoutRequest) toParams(menuSlug string) (checkout.Params, error) {
	method, err := enums.ParsePaymentMethod(strings.TrimSpace(req.PaymentMethod))
	if err != nil {
		return checkout.Params{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	params := checkout.Params{
		MenuSlug:            menuSlug,
		OrderType:           enums.OrderType(req.OrderType),
		PaymentMethod:       method,
		CookingInstructions: req.CookingInstructions,
		CouponCode:          req.CouponCode,
	}
	if req.TableID != nil {
		tableID, err := uuid.Parse(*req.TableID)
		if err != nil {
			return checkout.Params{}, pkgerrors.New(pkgerrors.CodeValidation, "table_id must be a uuid")
		}
		params.TableID = &tableID
	}
	return params, nil
}
