package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/feastline/feastline-backend/api/responses"
	"github.com/feastline/feastline-backend/pkg/db/models"
	pkgerrors "github.com/feastline/feastline-backend/pkg/errors"
	"github.com/feastline/feastline-backend/pkg/logger"
)

type outletFinder interface {
	FindOutletByID(ctx context.Context, id uuid.UUID) (*models.Outlet, error)
}

type channelNamer interface {
	SellerChannel(menuSlug string) string
}

type socketDTO struct {
	URL     string `json:"url"`
	Channel string `json:"channel"`
}

// SellerSocket tells the seller dashboard where to listen for live order
// events: the websocket path and the backing Pub/Sub channel name.
func SellerSocket(outlets outletFinder, channels channelNamer, logg *logger.Logger) http.HandlerFunc {
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

		outlet, err := outlets.FindOutletByID(r.Context(), *actor.OutletID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load outlet"))
			return
		}

		responses.WriteSuccess(w, socketDTO{
			URL:     "/ws/sellers/" + outlet.MenuSlug,
			Channel: channels.SellerChannel(outlet.MenuSlug),
		})
	}
}
