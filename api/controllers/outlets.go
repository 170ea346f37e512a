package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/feastline/feastline-backend/api/responses"
	"github.com/feastline/feastline-backend/internal/catalog"
	pkgerrors "github.com/feastline/feastline-backend/pkg/errors"
	"github.com/feastline/feastline-backend/pkg/logger"
)

func menuSlugFromRequest(r *http.Request) (string, error) {
	slug := strings.TrimSpace(chi.URLParam(r, "menuSlug"))
	if slug == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "menu slug is required")
	}
	return slug, nil
}

// OutletDetail serves the public outlet page behind a QR code.
func OutletDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, err := menuSlugFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outlet, err := svc.OutletBySlug(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, catalog.ToOutletDTO(outlet))
	}
}

// OutletItems serves the public menu with the nested variant tree.
func OutletItems(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, err := menuSlugFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.MenuItems(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}
