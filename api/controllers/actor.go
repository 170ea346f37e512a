package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/feastline/feastline-backend/api/middleware"
	"github.com/feastline/feastline-backend/internal/orders"
	"github.com/feastline/feastline-backend/pkg/enums"
	pkgerrors "github.com/feastline/feastline-backend/pkg/errors"
)

// actorFromRequest rebuilds the authenticated actor from the context the
// auth middleware seeded.
func actorFromRequest(r *http.Request) (orders.Actor, error) {
	ctx := r.Context()

	userID, err := uuid.Parse(middleware.UserIDFromContext(ctx))
	if err != nil {
		return orders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user identity")
	}

	actor := orders.Actor{
		UserID: userID,
		Role:   enums.UserRole(middleware.RoleFromContext(ctx)),
	}
	if raw := middleware.OutletIDFromContext(ctx); raw != "" {
		outletID, err := uuid.Parse(raw)
		if err != nil {
			return orders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "malformed outlet claim")
		}
		actor.OutletID = &outletID
	}
	return actor, nil
}

// userIDFromRequest is the customer-side shortcut when the role is irrelevant.
func userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user identity")
	}
	return userID, nil
}
