package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/feastline/feastline-backend/pkg/config"
	"github.com/feastline/feastline-backend/pkg/db/models"
	"github.com/feastline/feastline-backend/pkg/enums"
	pkgerrors "github.com/feastline/feastline-backend/pkg/errors"
	"github.com/feastline/feastline-backend/pkg/logger"
	"github.com/feastline/feastline-backend/pkg/metrics"
)

type broadcaster interface {
	Publish(ctx context.Context, channel string, payload any) error
	SellerChannel(menuSlug string) string
}

type outletLoader interface {
	FindOutletByID(ctx context.Context, id uuid.UUID) (*models.Outlet, error)
}

// OrderEvent is the payload broadcast on the outlet's realtime channel.
type OrderEvent struct {
	Type      string          `json:"type"`
	OrderID   uuid.UUID       `json:"order_id"`
	OutletID  uuid.UUID       `json:"outlet_id"`
	OrderType string          `json:"order_type"`
	Total     decimal.Decimal `json:"total"`
	TableName string          `json:"table_name,omitempty"`
}

// PushMessage is the payload delivered to web-push endpoints. URL is the
// deep link the notification opens.
type PushMessage struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// SubscribeParams registers one browser push endpoint.
type SubscribeParams struct {
	Endpoint string
	P256dh   string
	Auth     string
}

// ServiceParams groups the fan-out dependencies.
type ServiceParams struct {
	Repo      Repository
	Broadcast broadcaster
	Push      PushSender
	Outlets   outletLoader
	Metrics   *metrics.OrderMetrics
	Logger    *logger.Logger
	App       config.AppConfig
	Timeout   time.Duration
}

// Service fans order events out to the outlet's Redis channel and to
// web-push endpoints. Placement and payment events notify the outlet
// manager; preparation-status changes notify the ordering customer.
// Delivery runs detached from the request with a bounded timeout;
// failures are logged and counted, never returned to the triggering flow.
type Service interface {
	OrderPlaced(ctx context.Context, order *models.Order)
	PaymentConfirmed(ctx context.Context, order *models.Order)
	OrderStatusChanged(ctx context.Context, order *models.Order)
	Subscribe(ctx context.Context, userID uuid.UUID, params SubscribeParams) error
	SendTest(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo      Repository
	broadcast broadcaster
	push      PushSender
	outlets   outletLoader
	metrics   *metrics.OrderMetrics
	logger    *logger.Logger
	app       config.AppConfig
	timeout   time.Duration
	dispatch  func(fn func())
}

// NewService builds the notification fan-out service.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscription repo is required")
	case params.Broadcast == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "broadcaster is required")
	case params.Push == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "push sender is required")
	case params.Outlets == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outlet loader is required")
	case params.Logger == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &service{
		repo:      params.Repo,
		broadcast: params.Broadcast,
		push:      params.Push,
		outlets:   params.Outlets,
		metrics:   params.Metrics,
		logger:    params.Logger,
		app:       params.App,
		timeout:   timeout,
		dispatch:  func(fn func()) { go fn() },
	}, nil
}

func (s *service) OrderPlaced(ctx context.Context, order *models.Order) {
	s.fanOut(ctx, "order_placed", order)
}

func (s *service) PaymentConfirmed(ctx context.Context, order *models.Order) {
	s.fanOut(ctx, "payment_confirmed", order)
}

func (s *service) OrderStatusChanged(ctx context.Context, order *models.Order) {
	s.fanOut(ctx, "status_"+order.Status.String(), order)
}

// fanOut detaches from the caller's context so a finished request cannot
// cancel in-flight deliveries, but still bounds them with the configured
// timeout.
func (s *service) fanOut(ctx context.Context, eventType string, order *models.Order) {
	detached := context.WithoutCancel(ctx)
	s.dispatch(func() {
		deliveryCtx, cancel := context.WithTimeout(detached, s.timeout)
		defer cancel()
		s.deliver(deliveryCtx, eventType, order)
	})
}

func (s *service) deliver(ctx context.Context, eventType string, order *models.Order) {
	outlet := order.Outlet
	if outlet == nil {
		loaded, err := s.outlets.FindOutletByID(ctx, order.OutletID)
		if err != nil {
			s.logger.Error(s.logger.WithOrderID(ctx, order.ID.String()), "load outlet for fan-out", err)
			s.metrics.IncNotification("broadcast", "error")
			return
		}
		outlet = loaded
	}

	event := OrderEvent{
		Type:      eventType,
		OrderID:   order.ID,
		OutletID:  order.OutletID,
		OrderType: string(order.OrderType),
		Total:     order.Total,
	}
	if order.Table != nil {
		event.TableName = order.Table.Name
	}
	s.broadcastToOutlet(ctx, outlet, order, event)

	recipient, msg, ok := s.pushFor(eventType, outlet, order)
	if !ok {
		return
	}
	s.pushToUser(ctx, recipient, msg)
}

// pushFor picks the push recipient and message for an event. New-order and
// payment events go to the outlet manager; preparation-status changes go to
// the ordering customer.
func (s *service) pushFor(eventType string, outlet *models.Outlet, order *models.Order) (uuid.UUID, PushMessage, bool) {
	manager := outlet.ManagerID
	switch eventType {
	case "order_placed":
		return manager, PushMessage{
			Title: "New Order",
			Body:  "You have received a new order.",
			URL:   s.app.SellerBaseURL + "/orders",
		}, manager != uuid.Nil
	case "payment_confirmed":
		return manager, PushMessage{
			Title: "Payment Success",
			Body:  "Payment has been completed successfully.",
			URL:   s.app.SellerBaseURL + "/orders",
		}, manager != uuid.Nil
	}

	orderURL := s.app.CustomerBaseURL + "/order/" + order.ID.String()
	switch eventType {
	case "status_" + enums.OrderStatusProcessing.String():
		return order.UserID, PushMessage{
			Title: "Order Processing",
			Body:  "Order is being prepared.",
			URL:   orderURL,
		}, true
	case "status_" + enums.OrderStatusCompleted.String():
		return order.UserID, PushMessage{
			Title: "Order Completed",
			Body:  "Order has been completed.",
			URL:   orderURL,
		}, true
	case "status_" + enums.OrderStatusCancelled.String():
		return order.UserID, PushMessage{
			Title: "Order Cancelled",
			Body:  "Your order has been cancelled.",
			URL:   orderURL,
		}, true
	}
	return uuid.Nil, PushMessage{}, false
}

func (s *service) broadcastToOutlet(ctx context.Context, outlet *models.Outlet, order *models.Order, event OrderEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error(ctx, "marshal order event", err)
		s.metrics.IncNotification("broadcast", "error")
		return
	}
	if err := s.broadcast.Publish(ctx, s.broadcast.SellerChannel(outlet.MenuSlug), payload); err != nil {
		s.logger.Error(s.logger.WithOrderID(ctx, order.ID.String()), "publish order event", err)
		s.metrics.IncNotification("broadcast", "error")
		return
	}
	s.metrics.IncNotification("broadcast", "ok")
}

func (s *service) pushToUser(ctx context.Context, userID uuid.UUID, msg PushMessage) {
	subs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error(ctx, "list push subscriptions", err)
		s.metrics.IncNotification("webpush", "error")
		return
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error(ctx, "marshal push payload", err)
		return
	}

	for _, sub := range subs {
		err := s.push.Send(ctx, sub, payload)
		switch {
		case err == nil:
			s.metrics.IncNotification("webpush", "ok")
		case errors.Is(err, ErrSubscriptionGone):
			// The push service will never accept this endpoint again.
			if delErr := s.repo.DeleteByEndpoint(ctx, sub.Endpoint); delErr != nil {
				s.logger.Error(ctx, "delete dead push subscription", delErr)
			}
			s.metrics.IncNotification("webpush", "gone")
		default:
			s.logger.Error(ctx, "send web push", err)
			s.metrics.IncNotification("webpush", "error")
		}
	}
}

func (s *service) Subscribe(ctx context.Context, userID uuid.UUID, params SubscribeParams) error {
	if params.Endpoint == "" || params.P256dh == "" || params.Auth == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "endpoint and keys are required")
	}
	err := s.repo.Upsert(ctx, &models.PushSubscription{
		UserID:   userID,
		Endpoint: params.Endpoint,
		P256dh:   params.P256dh,
		Auth:     params.Auth,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save push subscription")
	}
	return nil
}

// SendTest delivers a notification synchronously so the client can verify
// its registration.
func (s *service) SendTest(ctx context.Context, userID uuid.UUID) error {
	subs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list push subscriptions")
	}
	if len(subs) == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "no push subscriptions registered")
	}

	payload, err := json.Marshal(PushMessage{
		Title: "Test Notification",
		Body:  "Push notifications are working.",
		URL:   s.app.CustomerBaseURL,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal test payload")
	}
	for _, sub := range subs {
		if err := s.push.Send(ctx, sub, payload); err != nil {
			if errors.Is(err, ErrSubscriptionGone) {
				if delErr := s.repo.DeleteByEndpoint(ctx, sub.Endpoint); delErr != nil {
					s.logger.Error(ctx, "delete dead push subscription", delErr)
				}
				continue
			}
			return err
		}
	}
	return nil
}
