package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/feastline/feastline-backend/internal/cart"
	"github.com/feastline/feastline-backend/internal/coupons"
	"github.com/feastline/feastline-backend/internal/orders"
	"github.com/feastline/feastline-backend/pkg/cashfree"
	"github.com/feastline/feastline-backend/pkg/config"
	"github.com/feastline/feastline-backend/pkg/db/models"
	"github.com/feastline/feastline-backend/pkg/enums"
	pkgerrors "github.com/feastline/feastline-backend/pkg/errors"
	"github.com/feastline/feastline-backend/pkg/logger"
	"github.com/feastline/feastline-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartProvider interface {
	Snapshot(ctx context.Context, userID, outletID uuid.UUID) (*cart.Snapshot, error)
}

type outletResolver interface {
	FindOutletBySlug(ctx context.Context, menuSlug string) (*models.Outlet, error)
	FindTable(ctx context.Context, id, outletID uuid.UUID) (*models.Table, error)
}

type couponRedeemer interface {
	Redeem(ctx context.Context, outletID uuid.UUID, code string, userID uuid.UUID, lines []coupons.CartLine) (*models.DiscountCoupon, decimal.Decimal, error)
}

type sessionOpener interface {
	CreateOrderSession(ctx context.Context, params cashfree.OrderSessionParams) (*cashfree.OrderSession, error)
}

// Notifier receives the post-commit fan-out trigger. Implementations must
// not block the checkout path.
type Notifier interface {
	OrderPlaced(ctx context.Context, order *models.Order)
}

// Params is the checkout request after HTTP-layer parsing.
type Params struct {
	MenuSlug            string
	OrderType           enums.OrderType
	PaymentMethod       enums.PaymentMethod
	TableID             *uuid.UUID
	CookingInstructions *string
	CouponCode          *string
}

// ServiceParams groups the orchestrator's dependencies.
type ServiceParams struct {
	Carts    cartProvider
	CartRepo cart.Repository
	Orders   orders.Repository
	Catalog  outletResolver
	Coupons  couponRedeemer
	Gateway  sessionOpener
	Notifier Notifier
	Tx       txRunner
	Metrics  *metrics.OrderMetrics
	Logger   *logger.Logger
	App      config.AppConfig
}

// Service turns a cart into an order. The order insert, its opening
// timeline entry, the item snapshot and the cart deletion commit in one
// transaction; the payment session is opened only after that commit, so
// a gateway outage can never leave a charged customer without an order.
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, params Params) (*ResultDTO, error)
	RetrySession(ctx context.Context, userID, orderID uuid.UUID) (*ResultDTO, error)
}

type service struct {
	carts    cartProvider
	cartRepo cart.Repository
	orders   orders.Repository
	catalog  outletResolver
	coupons  couponRedeemer
	gateway  sessionOpener
	notifier Notifier
	tx       txRunner
	metrics  *metrics.OrderMetrics
	logger   *logger.Logger
	app      config.AppConfig
	now      func() time.Time
}

// NewService builds the checkout orchestrator.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Carts == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart provider is required")
	case params.CartRepo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repo is required")
	case params.Orders == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders repo is required")
	case params.Catalog == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog resolver is required")
	case params.Coupons == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon redeemer is required")
	case params.Gateway == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment gateway is required")
	case params.Notifier == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notifier is required")
	case params.Tx == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	case params.Logger == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		carts:    params.Carts,
		cartRepo: params.CartRepo,
		orders:   params.Orders,
		catalog:  params.Catalog,
		coupons:  params.Coupons,
		gateway:  params.Gateway,
		notifier: params.Notifier,
		tx:       params.Tx,
		metrics:  params.Metrics,
		logger:   params.Logger,
		app:      params.App,
		now:      time.Now,
	}, nil
}

func (s *service) Checkout(ctx context.Context, userID uuid.UUID, params Params) (*ResultDTO, error) {
	started := s.now()

	outlet, err := s.resolveOutlet(ctx, params.MenuSlug)
	if err != nil {
		return nil, err
	}
	if err := s.validateParams(outlet, params); err != nil {
		return nil, err
	}

	snap, err := s.carts.Snapshot(ctx, userID, outlet.ID)
	if err != nil {
		return nil, err
	}
	if snap.Cart == nil || len(snap.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	var table *models.Table
	if params.OrderType == enums.OrderTypeDineIn {
		if params.TableID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "table is required for dine-in orders")
		}
		table, err = s.resolveTable(ctx, *params.TableID, outlet.ID)
		if err != nil {
			return nil, err
		}
	}

	subtotal := snap.Total
	discount := decimal.Zero
	var coupon *models.DiscountCoupon
	if params.CouponCode != nil && *params.CouponCode != "" {
		coupon, discount, err = s.coupons.Redeem(ctx, outlet.ID, *params.CouponCode, userID, couponLines(snap))
		if err != nil {
			return nil, err
		}
	}
	total := subtotal.Sub(discount)

	order := &models.Order{
		UserID:              userID,
		OutletID:            outlet.ID,
		OrderType:           params.OrderType,
		Status:              enums.OrderStatusPending,
		PaymentStatus:       enums.PaymentStatusActive,
		PaymentMethod:       params.PaymentMethod,
		CookingInstructions: params.CookingInstructions,
		Subtotal:            subtotal,
		Discount:            discount,
		Total:               total,
		Items:               orderItems(snap),
	}
	if table != nil {
		order.TableID = &table.ID
	}
	if coupon != nil {
		order.CouponID = &coupon.ID
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)
		if err := ordersRepo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if err := ordersRepo.UpsertTimelineStage(ctx, &models.OrderTimelineItem{
			OrderID: order.ID,
			Stage:   models.StageOrderPlaced,
			Done:    true,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record order placed")
		}
		if err := s.cartRepo.WithTx(tx).DeleteCart(ctx, snap.Cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncOrderCreated(string(params.PaymentMethod))
	defer func() {
		s.metrics.ObserveCheckout(string(params.PaymentMethod), s.now().Sub(started))
	}()

	if params.PaymentMethod.IsOffline() {
		s.notifier.OrderPlaced(ctx, order)
		return toResultDTO(order, nil), nil
	}

	session := s.openSession(ctx, order)
	return toResultDTO(order, session), nil
}

// RetrySession reopens a payment session for a committed order whose
// first attempt never produced one, or whose session went stale.
func (s *service) RetrySession(ctx context.Context, userID, orderID uuid.UUID) (*ResultDTO, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to caller")
	}
	if order.PaymentMethod.IsOffline() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order is paid at the counter")
	}
	if order.PaymentStatus == enums.PaymentStatusSuccess {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
	}

	session, err := s.createSession(ctx, order)
	if err != nil {
		return nil, err
	}
	return toResultDTO(order, session), nil
}

// openSession is the post-commit half of an online checkout. A gateway
// failure here must not fail the request: the order is committed and the
// client retries the session instead.
func (s *service) openSession(ctx context.Context, order *models.Order) *cashfree.OrderSession {
	session, err := s.createSession(ctx, order)
	if err != nil {
		s.logger.Error(s.logger.WithOrderID(ctx, order.ID.String()), "open payment session", err)
		return nil
	}
	return session
}

func (s *service) createSession(ctx context.Context, order *models.Order) (*cashfree.OrderSession, error) {
	params := cashfree.OrderSessionParams{
		OrderID:    order.ID.String(),
		Amount:     order.Total,
		CustomerID: order.UserID.String(),
		ReturnURL:  fmt.Sprintf("%s/orders/%s", s.app.CustomerBaseURL, order.ID),
		NotifyURL:  fmt.Sprintf("%s/api/v1/webhooks/cashfree", s.app.APIBaseURL),
	}
	if order.User != nil {
		params.CustomerName = order.User.Name
		if order.User.Phone != nil {
			params.CustomerPhone = *order.User.Phone
		}
	}

	session, err := s.gateway.CreateOrderSession(ctx, params)
	if err != nil {
		return nil, err
	}

	if err := s.orders.SetPaymentSession(ctx, order.ID, session.SessionID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist payment session")
	}
	if err := s.orders.UpsertTimelineStage(ctx, &models.OrderTimelineItem{
		OrderID: order.ID,
		Stage:   models.StagePaymentInitiated,
		Done:    true,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment initiated")
	}
	sessionID := session.SessionID
	order.PaymentSessionID = &sessionID
	return session, nil
}

func (s *service) resolveOutlet(ctx context.Context, menuSlug string) (*models.Outlet, error) {
	if menuSlug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "menu slug is required")
	}
	outlet, err := s.catalog.FindOutletBySlug(ctx, menuSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "outlet not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find outlet")
	}
	return outlet, nil
}

func (s *service) resolveTable(ctx context.Context, tableID, outletID uuid.UUID) (*models.Table, error) {
	table, err := s.catalog.FindTable(ctx, tableID, outletID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "table does not belong to outlet")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find table")
	}
	return table, nil
}

func (s *service) validateParams(outlet *models.Outlet, params Params) error {
	if !params.OrderType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order type")
	}
	if !params.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if !outlet.IsOpen {
		return pkgerrors.New(pkgerrors.CodeValidation, "outlet is closed")
	}
	if !params.PaymentMethod.IsOffline() && !outlet.GatewayEnabled() {
		return pkgerrors.New(pkgerrors.CodeValidation, "outlet does not accept online payments")
	}
	return nil
}

func couponLines(snap *cart.Snapshot) []coupons.CartLine {
	lines := make([]coupons.CartLine, 0, len(snap.Lines))
	for _, line := range snap.Lines {
		lines = append(lines, coupons.CartLine{
			FoodItemID: line.Item.FoodItemID,
			LineTotal:  line.LineTotal,
		})
	}
	return lines
}

func orderItems(snap *cart.Snapshot) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(snap.Lines))
	for _, line := range snap.Lines {
		items = append(items, models.OrderItem{
			FoodItemID: line.Item.FoodItemID,
			ItemName:   line.ItemName,
			VariantID:  line.Item.VariantID,
			AddonIDs:   line.Item.AddonIDs,
			Quantity:   line.Item.Quantity,
			UnitPrice:  line.UnitPrice,
			LineTotal:  line.LineTotal,
		})
	}
	return items
}
