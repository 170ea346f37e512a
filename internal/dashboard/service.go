package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/feastline/feastline-backend/internal/orders"
	"github.com/feastline/feastline-backend/pkg/config"
	"github.com/feastline/feastline-backend/pkg/enums"
	pkgerrors "github.com/feastline/feastline-backend/pkg/errors"
	"github.com/feastline/feastline-backend/pkg/logger"
)

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(parts ...string) string
}

// ServiceParams groups dependencies for the dashboard service.
type ServiceParams struct {
	Repo   Repository
	Cache  cacheStore
	Config config.DashboardConfig
	Logger *logger.Logger
	Now    func() time.Time
}

// Service serves the owner dashboard. The heavy aggregates are cached in
// Redis per outlet; today's order count is always read live.
type Service interface {
	Stats(ctx context.Context, actor orders.Actor) (*StatsDTO, error)
}

type service struct {
	repo   Repository
	cache  cacheStore
	cfg    config.DashboardConfig
	logger *logger.Logger
	now    func() time.Time
}

// NewService builds the dashboard service.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dashboard repo is required")
	case params.Cache == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cache store is required")
	case params.Logger == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:   params.Repo,
		cache:  params.Cache,
		cfg:    params.Config,
		logger: params.Logger,
		now:    now,
	}, nil
}

func (s *service) Stats(ctx context.Context, actor orders.Actor) (*StatsDTO, error) {
	if actor.Role != enums.UserRoleOwner || actor.OutletID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "dashboard is owner-only")
	}
	outletID := *actor.OutletID
	now := s.now()

	stats, err := s.cachedStats(ctx, outletID, now)
	if err != nil {
		return nil, err
	}

	// Today's count changes too fast to cache alongside the aggregates.
	todaysOrders, err := s.repo.TodaysOrderCount(ctx, outletID, startOfDay(now))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count today's orders")
	}

	dto := toStatsDTO(stats)
	dto.TodaysOrders = todaysOrders
	return dto, nil
}

// cachedStats serves the aggregates from Redis when present, otherwise
// computes and caches them. Cache failures degrade to a live computation.
func (s *service) cachedStats(ctx context.Context, outletID uuid.UUID, now time.Time) (*Stats, error) {
	key := s.cache.CacheKey("dashboard", outletID.String())

	raw, err := s.cache.Get(ctx, key)
	if err == nil {
		var cached Stats
		if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
			return &cached, nil
		}
		s.logger.Warn(ctx, "discarding malformed dashboard cache entry")
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Error(ctx, "read dashboard cache", err)
	}

	stats, err := s.repo.Stats(ctx, outletID, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute dashboard stats")
	}

	payload, err := json.Marshal(stats)
	if err == nil {
		if setErr := s.cache.Set(ctx, key, payload, s.cfg.CacheTTL); setErr != nil {
			s.logger.Error(ctx, "write dashboard cache", setErr)
		}
	}
	return stats, nil
}
