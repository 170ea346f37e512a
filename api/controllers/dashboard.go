package controllers

import (
	"net/http"

	"github.com/feastline/feastline-backend/api/responses"
	"github.com/feastline/feastline-backend/internal/dashboard"
	"github.com/feastline/feastline-backend/pkg/logger"
)

// Dashboard returns the owner's stats panel.
func Dashboard(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.Stats(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
