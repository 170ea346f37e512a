package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/feastline/feastline-backend/internal/cart"
	"github.com/feastline/feastline-backend/internal/catalog"
	checkoutsvc "github.com/feastline/feastline-backend/internal/checkout"
	"github.com/feastline/feastline-backend/internal/coupons"
	"github.com/feastline/feastline-backend/internal/dashboard"
	"github.com/feastline/feastline-backend/internal/notify"
	"github.com/feastline/feastline-backend/internal/orders"
	"github.com/feastline/feastline-backend/internal/payouts"
	cashfreewebhook "github.com/feastline/feastline-backend/internal/webhooks/cashfree"
	pkgauth "github.com/feastline/feastline-backend/pkg/auth"
	"github.com/feastline/feastline-backend/pkg/config"
	"github.com/feastline/feastline-backend/pkg/db/models"
	"github.com/feastline/feastline-backend/pkg/enums"
	"github.com/feastline/feastline-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubCatalogService struct{}

func (stubCatalogService) OutletBySlug(ctx context.Context, menuSlug string) (*models.Outlet, error) {
	return &models.Outlet{ID: uuid.New(), MenuSlug: menuSlug, Name: "Chai Point"}, nil
}

func (stubCatalogService) MenuItems(ctx context.Context, menuSlug string) ([]catalog.MenuItemDTO, error) {
	return nil, nil
}

// ResolveTable implements [catalog.Service].
func (stubCatalogService) ResolveTable(ctx context.Context, outletID, tableID uuid.UUID) (*models.Table, error) {
	panic("unimplemented")
}

type stubCatalogRepo struct{}

func (stubCatalogRepo) FindOutletBySlug(ctx context.Context, menuSlug string) (*models.Outlet, error) {
	panic("unimplemented")
}

func (stubCatalogRepo) FindOutletByID(ctx context.Context, id uuid.UUID) (*models.Outlet, error) {
	return &models.Outlet{ID: id, MenuSlug: "chai-point"}, nil
}

func (stubCatalogRepo) ListFoodItems(ctx context.Context, outletID uuid.UUID) ([]models.FoodItem, error) {
	panic("unimplemented")
}

func (stubCatalogRepo) FindFoodItem(ctx context.Context, id uuid.UUID) (*models.FoodItem, error) {
	panic("unimplemented")
}

func (stubCatalogRepo) FindVariant(ctx context.Context, id uuid.UUID) (*models.ItemVariant, error) {
	panic("unimplemented")
}

func (stubCatalogRepo) FindAddons(ctx context.Context, ids []uuid.UUID) ([]models.Addon, error) {
	panic("unimplemented")
}

func (stubCatalogRepo) FindTable(ctx context.Context, id, outletID uuid.UUID) (*models.Table, error) {
	panic("unimplemented")
}

type stubCartService struct{}

func (stubCartService) View(ctx context.Context, userID, outletID uuid.UUID) (*cart.CartDTO, error) {
	return &cart.CartDTO{}, nil
}

func (stubCartService) AddItem(ctx context.Context, userID, outletID uuid.UUID, params cart.AddItemParams) (*cart.CartDTO, error) {
	panic("unimplemented")
}

func (stubCartService) UpdateQuantity(ctx context.Context, userID, outletID uuid.UUID, itemKey string, quantity int) (*cart.CartDTO, error) {
	panic("unimplemented")
}

func (stubCartService) RemoveItem(ctx context.Context, userID, outletID uuid.UUID, itemKey string) (*cart.CartDTO, error) {
	panic("unimplemented")
}

func (stubCartService) Clear(ctx context.Context, userID, outletID uuid.UUID) error {
	panic("unimplemented")
}

func (stubCartService) Snapshot(ctx context.Context, userID, outletID uuid.UUID) (*cart.Snapshot, error) {
	panic("unimplemented")
}

type stubCheckoutService struct{}

func (stubCheckoutService) Checkout(ctx context.Context, userID uuid.UUID, params checkoutsvc.Params) (*checkoutsvc.ResultDTO, error) {
	panic("unimplemented")
}

func (stubCheckoutService) RetrySession(ctx context.Context, userID, orderID uuid.UUID) (*checkoutsvc.ResultDTO, error) {
	panic("unimplemented")
}

type stubOrdersService struct{}

func (stubOrdersService) Detail(ctx context.Context, actor orders.Actor, orderID uuid.UUID) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrdersService) List(ctx context.Context, actor orders.Actor, query orders.ListQuery) (*orders.OrderListDTO, error) {
	return &orders.OrderListDTO{}, nil
}

func (stubOrdersService) UpdateStatus(ctx context.Context, actor orders.Actor, orderID uuid.UUID, target enums.OrderStatus) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrdersService) MarkPaid(ctx context.Context, actor orders.Actor, orderID uuid.UUID) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrdersService) Live(ctx context.Context, actor orders.Actor) (*orders.LiveOrdersDTO, error) {
	return &orders.LiveOrdersDTO{}, nil
}

type stubCouponsService struct{}

func (stubCouponsService) IsApplicable(ctx context.Context, coupon *models.DiscountCoupon, userID uuid.UUID, lines []coupons.CartLine) (bool, error) {
	panic("unimplemented")
}

func (stubCouponsService) IsActive(ctx context.Context, coupon *models.DiscountCoupon, cartTotal decimal.Decimal) (bool, error) {
	panic("unimplemented")
}

func (stubCouponsService) Discount(coupon *models.DiscountCoupon, cartTotal decimal.Decimal) decimal.Decimal {
	panic("unimplemented")
}

func (stubCouponsService) Redeem(ctx context.Context, outletID uuid.UUID, code string, userID uuid.UUID, lines []coupons.CartLine) (*models.DiscountCoupon, decimal.Decimal, error) {
	panic("unimplemented")
}

func (stubCouponsService) ApplicableOffers(ctx context.Context, outletID, userID uuid.UUID, lines []coupons.CartLine) (*coupons.OffersDTO, error) {
	panic("unimplemented")
}

func (stubCouponsService) Create(ctx context.Context, coupon *models.DiscountCoupon) (*models.DiscountCoupon, error) {
	panic("unimplemented")
}

func (stubCouponsService) ListByOutlet(ctx context.Context, outletID uuid.UUID) ([]models.DiscountCoupon, error) {
	return nil, nil
}

type stubPayoutsService struct{}

func (stubPayoutsService) Settlement(ctx context.Context, actor orders.Actor, days int) (*payouts.SettlementDTO, error) {
	return &payouts.SettlementDTO{}, nil
}

type stubDashboardService struct{}

func (stubDashboardService) Stats(ctx context.Context, actor orders.Actor) (*dashboard.StatsDTO, error) {
	return &dashboard.StatsDTO{}, nil
}

type stubNotifyService struct{}

func (stubNotifyService) OrderPlaced(ctx context.Context, order *models.Order) {}

func (stubNotifyService) PaymentConfirmed(ctx context.Context, order *models.Order) {}

func (stubNotifyService) OrderStatusChanged(ctx context.Context, order *models.Order) {}

func (stubNotifyService) Subscribe(ctx context.Context, userID uuid.UUID, params notify.SubscribeParams) error {
	return nil
}

func (stubNotifyService) SendTest(ctx context.Context, userID uuid.UUID) error {
	return nil
}

type stubWebhookService struct{}

func (stubWebhookService) Process(ctx context.Context, event cashfreewebhook.Event) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "issuer"},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Config:          cfg,
		Logger:          logg,
		DBPinger:        stubPinger{},
		Redis:           nil,
		Catalog:         stubCatalogService{},
		CatalogRepo:     stubCatalogRepo{},
		Cart:            stubCartService{},
		Checkout:        stubCheckoutService{},
		Orders:          stubOrdersService{},
		Coupons:         stubCouponsService{},
		Payouts:         stubPayoutsService{},
		Dashboard:       stubDashboardService{},
		Notify:          stubNotifyService{},
		Cashfree:        nil,
		CashfreeWebhook: stubWebhookService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole, outletID *uuid.UUID) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), time.Hour, pkgauth.AccessTokenPayload{
		UserID:   uuid.New(),
		Role:     role,
		OutletID: outletID,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveRoute(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPublicOutletRouteNeedsNoToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/outlets/chai-point", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
}

func TestAuthenticatedGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestAuthenticatedGroupAcceptsValidJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer, nil))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
}

func TestOwnerGroupRequiresOwnerRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	customer := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer, nil))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	outletID := uuid.New()
	owner := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	owner.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleOwner, &outletID))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, owner)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner got %d (%s)", resp.Code, resp.Body.String())
	}
}

func TestOwnerGroupRejectsOwnerWithoutOutlet(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payouts", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleOwner, nil))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without outlet got %d", resp.Code)
	}
}
