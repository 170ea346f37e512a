package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feastline/feastline-backend/pkg/db/models"
	"github.com/feastline/feastline-backend/pkg/enums"
	pkgerrors "github.com/feastline/feastline-backend/pkg/errors"
	"github.com/feastline/feastline-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Notifier fans staff-driven lifecycle events out to the customer and the
// outlet channel. Calls are fire-and-forget.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, order *models.Order)
	PaymentConfirmed(ctx context.Context, order *models.Order)
}

// Actor identifies the authenticated caller for role-gated operations.
type Actor struct {
	UserID   uuid.UUID
	Role     enums.UserRole
	OutletID *uuid.UUID
}

// manages reports whether the actor is outlet staff for the given outlet.
func (a Actor) manages(outletID uuid.UUID) bool {
	return a.Role == enums.UserRoleOwner && a.OutletID != nil && *a.OutletID == outletID
}

// ListQuery carries listing inputs from the HTTP layer.
type ListQuery struct {
	From   *time.Time
	To     *time.Time
	Status *enums.OrderStatus
	Limit  int
	Cursor string
}

// ServiceParams groups dependencies for the order service.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Notifier Notifier
	Now      func() time.Time
}

// Service exposes the post-checkout order lifecycle: role-gated reads,
// the staff preparation state machine, and payment overrides.
type Service interface {
	Detail(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, actor Actor, query ListQuery) (*OrderListDTO, error)
	UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, target enums.OrderStatus) (*OrderDTO, error)
	MarkPaid(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error)
	Live(ctx context.Context, actor Actor) (*LiveOrdersDTO, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	notifier Notifier
	now      func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders repo is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	if params.Notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notifier is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, tx: params.Tx, notifier: params.Notifier, now: now}, nil
}

// statusTransitions is the staff preparation machine. Completed and
// cancelled are terminal.
var statusTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:    {enums.OrderStatusProcessing, enums.OrderStatusCancelled},
	enums.OrderStatusProcessing: {enums.OrderStatusCompleted, enums.OrderStatusCancelled},
}

// stageForStatus maps a reached status to its timeline stage.
var stageForStatus = map[enums.OrderStatus]string{
	enums.OrderStatusProcessing: models.StageOrderProcessing,
	enums.OrderStatusCompleted:  models.StageOrderCompleted,
	enums.OrderStatusCancelled:  models.StageOrderCancelled,
}

func (s *service) Detail(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.UserID && !actor.manages(order.OutletID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to caller")
	}
	return toOrderDTO(order), nil
}

func (s *service) List(ctx context.Context, actor Actor, query ListQuery) (*OrderListDTO, error) {
	filter := ListFilter{From: query.From, To: query.To, Status: query.Status}
	params := pagination.Params{Limit: query.Limit, Cursor: query.Cursor}

	var (
		rows []models.Order
		next string
		err  error
	)
	if actor.Role == enums.UserRoleOwner {
		if actor.OutletID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "outlet context missing")
		}
		rows, next, err = s.repo.ListByOutlet(ctx, *actor.OutletID, filter, params)
	} else {
		rows, next, err = s.repo.ListByUser(ctx, actor.UserID, filter, params)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	dto := &OrderListDTO{Orders: make([]OrderDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		dto.Orders = append(dto.Orders, *toOrderDTO(&rows[i]))
	}
	return dto, nil
}

func (s *service) UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, target enums.OrderStatus) (*OrderDTO, error) {
	if !target.IsValid() || target == enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target status")
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.manages(order.OutletID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to outlet")
	}
	if order.Status == target {
		return toOrderDTO(order), nil
	}

	from := transitionSources(target)
	if !contains(from, order.Status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		moved, err := repo.UpdateStatus(ctx, orderID, from, target)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed")
		}
		return repo.UpsertTimelineStage(ctx, &models.OrderTimelineItem{
			OrderID: orderID,
			Stage:   stageForStatus[target],
			Done:    true,
		})
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.notifier.OrderStatusChanged(ctx, updated)
	return toOrderDTO(updated), nil
}

// MarkPaid is the staff override for counter settlements. It moves any
// non-success payment state to success through the same conditional
// update the webhook reconciler uses, so a racing gateway confirmation
// cannot double-apply.
func (s *service) MarkPaid(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.manages(order.OutletID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to outlet")
	}
	if order.PaymentStatus == enums.PaymentStatusSuccess {
		return toOrderDTO(order), nil
	}

	var settled bool
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		from := []enums.PaymentStatus{
			enums.PaymentStatusActive,
			enums.PaymentStatusPending,
			enums.PaymentStatusFailed,
		}
		moved, err := repo.UpdatePaymentStatus(ctx, orderID, from, enums.PaymentStatusSuccess)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment status")
		}
		if !moved {
			return nil
		}
		settled = true
		return repo.UpsertTimelineStage(ctx, &models.OrderTimelineItem{
			OrderID: orderID,
			Stage:   models.StagePaymentSuccess,
			Done:    true,
			Content: "Marked paid at counter",
		})
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if settled {
		s.notifier.PaymentConfirmed(ctx, updated)
	}
	return toOrderDTO(updated), nil
}

func (s *service) Live(ctx context.Context, actor Actor) (*LiveOrdersDTO, error) {
	if actor.Role != enums.UserRoleOwner || actor.OutletID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "outlet context missing")
	}

	since := startOfDay(s.now())
	rows, err := s.repo.ListLive(ctx, *actor.OutletID, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list live orders")
	}

	dto := &LiveOrdersDTO{
		New:       []OrderDTO{},
		Preparing: []OrderDTO{},
		Completed: []OrderDTO{},
	}
	for i := range rows {
		order := toOrderDTO(&rows[i])
		switch rows[i].Status {
		case enums.OrderStatusPending:
			dto.New = append(dto.New, *order)
		case enums.OrderStatusProcessing:
			dto.Preparing = append(dto.Preparing, *order)
		case enums.OrderStatusCompleted:
			dto.Completed = append(dto.Completed, *order)
		}
	}
	return dto, nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// transitionSources returns the statuses allowed to move to target.
func transitionSources(target enums.OrderStatus) []enums.OrderStatus {
	var from []enums.OrderStatus
	for source, targets := range statusTransitions {
		if contains(targets, target) {
			from = append(from, source)
		}
	}
	return from
}

func contains(list []enums.OrderStatus, status enums.OrderStatus) bool {
	for _, candidate := range list {
		if candidate == status {
			return true
		}
	}
	return false
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
