package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feastline/feastline-backend/pkg/db/models"
	pkgerrors "github.com/feastline/feastline-backend/pkg/errors"
)

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Repo Repository
}

// Service exposes the public catalog read surface.
type Service interface {
	OutletBySlug(ctx context.Context, menuSlug string) (*models.Outlet, error)
	MenuItems(ctx context.Context, menuSlug string) ([]MenuItemDTO, error)
	ResolveTable(ctx context.Context, outletID, tableID uuid.UUID) (*models.Table, error)
}

type service struct {
	repo Repository
}

// NewService builds a catalog service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repo is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) OutletBySlug(ctx context.Context, menuSlug string) (*models.Outlet, error) {
	if menuSlug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "menu slug is required")
	}
	outlet, err := s.repo.FindOutletBySlug(ctx, menuSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "outlet not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load outlet")
	}
	return outlet, nil
}

// MenuItems returns the outlet's available items with their nested variant
// trees and add-ons, grouped the way menu clients render them.
func (s *service) MenuItems(ctx context.Context, menuSlug string) ([]MenuItemDTO, error) {
	outlet, err := s.OutletBySlug(ctx, menuSlug)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListFoodItems(ctx, outlet.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list food items")
	}

	out := make([]MenuItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toMenuItemDTO(item))
	}
	return out, nil
}

func (s *service) ResolveTable(ctx context.Context, outletID, tableID uuid.UUID) (*models.Table, error) {
	if tableID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "table id is required")
	}
	table, err := s.repo.FindTable(ctx, tableID, outletID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "table not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load table")
	}
	return table, nil
}
