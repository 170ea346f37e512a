package payouts

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/feastline/feastline-backend/internal/orders"
	"github.com/feastline/feastline-backend/pkg/db"
	"github.com/feastline/feastline-backend/pkg/db/models"
	"github.com/feastline/feastline-backend/pkg/enums"
	pkgerrors "github.com/feastline/feastline-backend/pkg/errors"
)

// maxSettlementDays bounds how far back a settlement query may reach.
const maxSettlementDays = 90

// ServiceParams groups dependencies for the settlement service.
type ServiceParams struct {
	Repo Repository
	Now  func() time.Time
}

// Service exposes the owner's settlement view. Settlement rows are
// materialized lazily: the first query that covers a day creates its
// payout row, frozen at that day's aggregate.
type Service interface {
	Settlement(ctx context.Context, actor orders.Actor, days int) (*SettlementDTO, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the payout settlement service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout repo is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, now: now}, nil
}

func (s *service) Settlement(ctx context.Context, actor orders.Actor, days int) (*SettlementDTO, error) {
	if actor.Role != enums.UserRoleOwner || actor.OutletID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "settlement is owner-only")
	}
	if days <= 0 || days > maxSettlementDays {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "days must be between 1 and 90")
	}
	outletID := *actor.OutletID

	since := startOfDay(s.now()).AddDate(0, 0, -days)
	settleable, err := s.repo.ListSettleable(ctx, outletID, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list settleable orders")
	}

	totals := make(map[time.Time]decimal.Decimal)
	for _, order := range settleable {
		day := startOfDay(order.CreatedAt)
		totals[day] = totals[day].Add(order.Total)
	}
	dates := make([]time.Time, 0, len(totals))
	for day := range totals {
		dates = append(dates, day)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	result := &SettlementDTO{
		OrdersByDay:  make([]DailyRevenueDTO, 0, len(dates)),
		PayoutsByDay: make([]PayoutDTO, 0, len(dates)),
	}
	for _, day := range dates {
		total := totals[day]
		result.OrdersByDay = append(result.OrdersByDay, DailyRevenueDTO{
			Date:  day.Format(time.DateOnly),
			Total: total,
		})

		payout, err := s.materialize(ctx, outletID, day, total)
		if err != nil {
			return nil, err
		}
		result.PayoutsByDay = append(result.PayoutsByDay, PayoutDTO{
			Date:   day.Format(time.DateOnly),
			Amount: payout.Amount,
			Status: payout.Status,
		})
	}
	return result, nil
}

// materialize returns the day's payout row, creating it on first sight. The
// amount is frozen at creation; later queries return the stored row even if
// new orders land on that day. A concurrent first query loses the unique
// race and rereads the winner.
func (s *service) materialize(ctx context.Context, outletID uuid.UUID, day time.Time, total decimal.Decimal) (*models.Payout, error) {
	payout, err := s.repo.FindByOutletAndDate(ctx, outletID, day)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find payout")
	}
	if payout != nil {
		return payout, nil
	}

	payout = &models.Payout{
		OutletID: outletID,
		Date:     day,
		Amount:   total,
		Status:   enums.PayoutStatusPending,
	}
	if err := s.repo.Create(ctx, payout); err != nil {
		if db.IsUniqueViolation(err, models.UniquePayoutOutletDate) {
			existing, findErr := s.repo.FindByOutletAndDate(ctx, outletID, day)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "reread payout after conflict")
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payout")
	}
	return payout, nil
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
