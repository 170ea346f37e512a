package cashfreewebhook

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feastline/feastline-backend/internal/orders"
	"github.com/feastline/feastline-backend/pkg/db/models"
	"github.com/feastline/feastline-backend/pkg/enums"
	pkgerrors "github.com/feastline/feastline-backend/pkg/errors"
	"github.com/feastline/feastline-backend/pkg/logger"
	"github.com/feastline/feastline-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Notifier receives the exactly-once fan-out trigger when an order first
// reaches payment success.
type Notifier interface {
	PaymentConfirmed(ctx context.Context, order *models.Order)
}

// Event is a signature-verified gateway delivery, already parsed by the
// HTTP layer.
type Event struct {
	ID           string
	OrderID      uuid.UUID
	Status       string
	PaymentGroup string
}

// ServiceParams groups the reconciler's dependencies.
type ServiceParams struct {
	Orders   orders.Repository
	Guard    *IdempotencyGuard
	Tx       txRunner
	Notifier Notifier
	Metrics  *metrics.OrderMetrics
	Logger   *logger.Logger
}

// Service reconciles gateway payment webhooks into order payment state.
// Duplicate deliveries are cheap no-ops: the Redis guard catches exact
// replays and the conditional payment-status update catches everything
// the guard misses.
type Service interface {
	Process(ctx context.Context, event Event) error
}

type service struct {
	orders   orders.Repository
	guard    *IdempotencyGuard
	tx       txRunner
	notifier Notifier
	metrics  *metrics.OrderMetrics
	logger   *logger.Logger
}

// NewService builds the webhook reconciler.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Orders == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders repo is required")
	case params.Guard == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "idempotency guard is required")
	case params.Tx == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	case params.Notifier == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notifier is required")
	case params.Logger == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		orders:   params.Orders,
		guard:    params.Guard,
		tx:       params.Tx,
		notifier: params.Notifier,
		metrics:  params.Metrics,
		logger:   params.Logger,
	}, nil
}

func (s *service) Process(ctx context.Context, event Event) error {
	if event.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "event id is required")
	}
	if event.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	seen, err := s.guard.CheckAndMark(ctx, event.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "webhook idempotency check")
	}
	if seen {
		s.metrics.IncWebhook("duplicate")
		return nil
	}

	target := mapPaymentStatus(event.Status)
	transitioned, err := s.apply(ctx, event, target)
	if err != nil {
		// Drop the seen-marker so the gateway's retry is not swallowed.
		if releaseErr := s.guard.Release(ctx, event.ID); releaseErr != nil {
			s.logger.Error(ctx, "release webhook idempotency key", releaseErr)
		}
		s.metrics.IncWebhook("error")
		return err
	}

	s.metrics.IncWebhook(string(target))

	if target == enums.PaymentStatusSuccess && transitioned {
		order, err := s.orders.FindByID(ctx, event.OrderID)
		if err != nil {
			s.logger.Error(s.logger.WithOrderID(ctx, event.OrderID.String()), "load order for fan-out", err)
			return nil
		}
		s.notifier.PaymentConfirmed(ctx, order)
	}
	return nil
}

// apply performs the guarded status move and the timeline write in one
// transaction, returning whether this delivery performed the transition.
func (s *service) apply(ctx context.Context, event Event, target enums.PaymentStatus) (bool, error) {
	var transitioned bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)

		moved, err := repo.UpdatePaymentStatus(ctx, event.OrderID, transitionSources(target), target)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment status")
		}
		transitioned = moved
		if !moved {
			// A redelivery under a fresh event id lands here. When the
			// order already sits in the target state, refresh the existing
			// timeline stage; anything else is a stale or out-of-order
			// delivery and writes nothing.
			order, err := repo.FindByID(ctx, event.OrderID)
			if err != nil {
				return nil
			}
			if order.PaymentStatus != target {
				return nil
			}
			return repo.UpsertTimelineStage(ctx, &models.OrderTimelineItem{
				OrderID: event.OrderID,
				Stage:   stageFor(target),
				Done:    target != enums.PaymentStatusPending,
			})
		}

		if target == enums.PaymentStatusSuccess {
			if method, err := enums.ParsePaymentMethod(event.PaymentGroup); err == nil {
				if err := repo.SetPaymentMethod(ctx, event.OrderID, method); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment method")
				}
			}
		}

		return repo.UpsertTimelineStage(ctx, &models.OrderTimelineItem{
			OrderID: event.OrderID,
			Stage:   stageFor(target),
			Done:    target != enums.PaymentStatusPending,
		})
	})
	return transitioned, err
}

// mapPaymentStatus folds the provider's attempt states into the order's
// payment lifecycle. Anything that is neither success nor pending is a
// failure.
func mapPaymentStatus(providerStatus string) enums.PaymentStatus {
	switch providerStatus {
	case "SUCCESS":
		return enums.PaymentStatusSuccess
	case "PENDING":
		return enums.PaymentStatusPending
	default:
		return enums.PaymentStatusFailed
	}
}

// transitionSources returns the states a webhook may move to target.
// Success and failed are terminal against pending; only success may
// overwrite failed, covering a retried payment on the same order.
func transitionSources(target enums.PaymentStatus) []enums.PaymentStatus {
	switch target {
	case enums.PaymentStatusSuccess:
		return []enums.PaymentStatus{
			enums.PaymentStatusActive,
			enums.PaymentStatusPending,
			enums.PaymentStatusFailed,
		}
	case enums.PaymentStatusPending:
		return []enums.PaymentStatus{enums.PaymentStatusActive}
	default:
		return []enums.PaymentStatus{
			enums.PaymentStatusActive,
			enums.PaymentStatusPending,
		}
	}
}

func stageFor(status enums.PaymentStatus) string {
	switch status {
	case enums.PaymentStatusSuccess:
		return models.StagePaymentSuccess
	case enums.PaymentStatusPending:
		return models.StagePaymentPending
	default:
		return models.StagePaymentFailed
	}
}
