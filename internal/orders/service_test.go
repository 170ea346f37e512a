package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/feastline/feastline-backend/pkg/db/models"
	"github.com/feastline/feastline-backend/pkg/enums"
	pkgerrors "github.com/feastline/feastline-backend/pkg/errors"
	"github.com/feastline/feastline-backend/pkg/pagination"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOrderRepo struct {
	orders    map[uuid.UUID]*models.Order
	timeline  map[uuid.UUID][]models.OrderTimelineItem
	liveSince time.Time
	liveRows  []models.Order
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{
		orders:   make(map[uuid.UUID]*models.Order),
		timeline: make(map[uuid.UUID][]models.OrderTimelineItem),
	}
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrderRepo) Create(_ context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	copied := *order
	s.orders[order.ID] = &copied
	return nil
}

func (s *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	copied.Timeline = append([]models.OrderTimelineItem(nil), s.timeline[id]...)
	return &copied, nil
}

func (s *stubOrderRepo) UpsertTimelineStage(_ context.Context, item *models.OrderTimelineItem) error {
	entries := s.timeline[item.OrderID]
	for i := range entries {
		if entries[i].Stage == item.Stage {
			entries[i].Done = item.Done
			entries[i].Content = item.Content
			return nil
		}
	}
	s.timeline[item.OrderID] = append(entries, *item)
	return nil
}

func (s *stubOrderRepo) SetPaymentSession(_ context.Context, orderID uuid.UUID, sessionID string) error {
	if order, ok := s.orders[orderID]; ok {
		order.PaymentSessionID = &sessionID
	}
	return nil
}

func (s *stubOrderRepo) SetPaymentMethod(_ context.Context, orderID uuid.UUID, method enums.PaymentMethod) error {
	if order, ok := s.orders[orderID]; ok {
		order.PaymentMethod = method
	}
	return nil
}

func (s *stubOrderRepo) UpdatePaymentStatus(_ context.Context, orderID uuid.UUID, from []enums.PaymentStatus, to enums.PaymentStatus) (bool, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return false, nil
	}
	for _, allowed := range from {
		if order.PaymentStatus == allowed {
			order.PaymentStatus = to
			return true, nil
		}
	}
	return false, nil
}

func (s *stubOrderRepo) UpdateStatus(_ context.Context, orderID uuid.UUID, from []enums.OrderStatus, to enums.OrderStatus) (bool, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return false, nil
	}
	for _, allowed := range from {
		if order.Status == allowed {
			order.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (s *stubOrderRepo) ListByUser(_ context.Context, userID uuid.UUID, _ ListFilter, _ pagination.Params) ([]models.Order, string, error) {
	var out []models.Order
	for _, order := range s.orders {
		if order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, "", nil
}

func (s *stubOrderRepo) ListByOutlet(_ context.Context, outletID uuid.UUID, _ ListFilter, _ pagination.Params) ([]models.Order, string, error) {
	var out []models.Order
	for _, order := range s.orders {
		if order.OutletID == outletID {
			out = append(out, *order)
		}
	}
	return out, "", nil
}

func (s *stubOrderRepo) ListLive(_ context.Context, _ uuid.UUID, since time.Time) ([]models.Order, error) {
	s.liveSince = since
	return s.liveRows, nil
}

func seedStubOrder(repo *stubOrderRepo, outletID uuid.UUID, status enums.OrderStatus) *models.Order {
	order := &models.Order{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		OutletID:      outletID,
		OrderType:     enums.OrderTypeTakeaway,
		Status:        status,
		PaymentStatus: enums.PaymentStatusActive,
		PaymentMethod: enums.PaymentMethodOnline,
		Subtotal:      decimal.RequireFromString("300.00"),
		Total:         decimal.RequireFromString("300.00"),
	}
	repo.orders[order.ID] = order
	return order
}

func ownerActor(outletID uuid.UUID) Actor {
	return Actor{UserID: uuid.New(), Role: enums.UserRoleOwner, OutletID: &outletID}
}

type stubLifecycleNotifier struct {
	statusChanged []enums.OrderStatus
	confirmed     []uuid.UUID
}

func (s *stubLifecycleNotifier) OrderStatusChanged(_ context.Context, order *models.Order) {
	s.statusChanged = append(s.statusChanged, order.Status)
}

func (s *stubLifecycleNotifier) PaymentConfirmed(_ context.Context, order *models.Order) {
	s.confirmed = append(s.confirmed, order.ID)
}

func newOrderService(t *testing.T, repo Repository, now func() time.Time) (Service, *stubLifecycleNotifier) {
	t.Helper()

	notifier := &stubLifecycleNotifier{}
	svc, err := NewService(ServiceParams{Repo: repo, Tx: stubTxRunner{}, Notifier: notifier, Now: now})
	require.NoError(t, err)
	return svc, notifier
}

func TestNewOrderServiceValidatesDeps(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = NewService(ServiceParams{Repo: newStubOrderRepo()})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = NewService(ServiceParams{Repo: newStubOrderRepo(), Tx: stubTxRunner{}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDetailRoleGating(t *testing.T) {
	repo := newStubOrderRepo()
	outletID := uuid.New()
	order := seedStubOrder(repo, outletID, enums.OrderStatusPending)
	svc, _ := newOrderService(t, repo, nil)
	ctx := context.Background()

	// The customer who placed it.
	dto, err := svc.Detail(ctx, Actor{UserID: order.UserID, Role: enums.UserRoleCustomer}, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, dto.ID)

	// Staff of the same outlet.
	_, err = svc.Detail(ctx, ownerActor(outletID), order.ID)
	require.NoError(t, err)

	// Staff of another outlet.
	_, err = svc.Detail(ctx, ownerActor(uuid.New()), order.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	// Some other customer.
	_, err = svc.Detail(ctx, Actor{UserID: uuid.New(), Role: enums.UserRoleCustomer}, order.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = svc.Detail(ctx, ownerActor(outletID), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListRoleScoping(t *testing.T) {
	repo := newStubOrderRepo()
	outletID := uuid.New()
	order := seedStubOrder(repo, outletID, enums.OrderStatusPending)
	seedStubOrder(repo, uuid.New(), enums.OrderStatusPending)
	svc, _ := newOrderService(t, repo, nil)
	ctx := context.Background()

	mine, err := svc.List(ctx, Actor{UserID: order.UserID, Role: enums.UserRoleCustomer}, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, mine.Orders, 1)

	outlet, err := svc.List(ctx, ownerActor(outletID), ListQuery{})
	require.NoError(t, err)
	assert.Len(t, outlet.Orders, 1)

	_, err = svc.List(ctx, Actor{UserID: uuid.New(), Role: enums.UserRoleOwner}, ListQuery{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestUpdateStatusTransitions(t *testing.T) {
	repo := newStubOrderRepo()
	outletID := uuid.New()
	order := seedStubOrder(repo, outletID, enums.OrderStatusPending)
	svc, notifier := newOrderService(t, repo, nil)
	actor := ownerActor(outletID)
	ctx := context.Background()

	// pending cannot jump straight to completed.
	_, err := svc.UpdateStatus(ctx, actor, order.ID, enums.OrderStatusCompleted)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	assert.Empty(t, notifier.statusChanged)

	dto, err := svc.UpdateStatus(ctx, actor, order.ID, enums.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusProcessing, dto.Status)
	require.Len(t, dto.Timeline, 1)
	assert.Equal(t, models.StageOrderProcessing, dto.Timeline[0].Stage)
	assert.True(t, dto.Timeline[0].Done)

	dto, err = svc.UpdateStatus(ctx, actor, order.ID, enums.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCompleted, dto.Status)

	// Each successful transition notified the customer once.
	assert.Equal(t, []enums.OrderStatus{enums.OrderStatusProcessing, enums.OrderStatusCompleted}, notifier.statusChanged)

	// Completed is terminal.
	_, err = svc.UpdateStatus(ctx, actor, order.ID, enums.OrderStatusCancelled)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	assert.Len(t, notifier.statusChanged, 2)
}

func TestUpdateStatusCancelPaths(t *testing.T) {
	repo := newStubOrderRepo()
	outletID := uuid.New()
	svc, notifier := newOrderService(t, repo, nil)
	actor := ownerActor(outletID)
	ctx := context.Background()

	pending := seedStubOrder(repo, outletID, enums.OrderStatusPending)
	dto, err := svc.UpdateStatus(ctx, actor, pending.ID, enums.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, dto.Status)
	assert.Equal(t, []enums.OrderStatus{enums.OrderStatusCancelled}, notifier.statusChanged)

	// Cancelled orders stay cancelled.
	_, err = svc.UpdateStatus(ctx, actor, pending.ID, enums.OrderStatusProcessing)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	processing := seedStubOrder(repo, outletID, enums.OrderStatusProcessing)
	dto, err = svc.UpdateStatus(ctx, actor, processing.ID, enums.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, dto.Status)
}

func TestUpdateStatusGuards(t *testing.T) {
	repo := newStubOrderRepo()
	outletID := uuid.New()
	order := seedStubOrder(repo, outletID, enums.OrderStatusPending)
	svc, notifier := newOrderService(t, repo, nil)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, ownerActor(uuid.New()), order.ID, enums.OrderStatusProcessing)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = svc.UpdateStatus(ctx, Actor{UserID: order.UserID, Role: enums.UserRoleCustomer}, order.ID, enums.OrderStatusProcessing)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = svc.UpdateStatus(ctx, ownerActor(outletID), order.ID, enums.OrderStatus("shipped"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.UpdateStatus(ctx, ownerActor(outletID), order.ID, enums.OrderStatusPending)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	// Re-applying the current status is a no-op, not a conflict, and does
	// not notify again.
	dto, err := svc.UpdateStatus(ctx, ownerActor(outletID), order.ID, enums.OrderStatusProcessing)
	require.NoError(t, err)
	dto, err = svc.UpdateStatus(ctx, ownerActor(outletID), order.ID, enums.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusProcessing, dto.Status)
	assert.Len(t, notifier.statusChanged, 1)
}

func TestMarkPaid(t *testing.T) {
	repo := newStubOrderRepo()
	outletID := uuid.New()
	order := seedStubOrder(repo, outletID, enums.OrderStatusPending)
	svc, notifier := newOrderService(t, repo, nil)
	actor := ownerActor(outletID)
	ctx := context.Background()

	dto, err := svc.MarkPaid(ctx, actor, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusSuccess, dto.PaymentStatus)
	require.Len(t, dto.Timeline, 1)
	assert.Equal(t, models.StagePaymentSuccess, dto.Timeline[0].Stage)
	assert.Equal(t, []uuid.UUID{order.ID}, notifier.confirmed)

	// Idempotent once success, with no second fan-out.
	dto, err = svc.MarkPaid(ctx, actor, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusSuccess, dto.PaymentStatus)
	assert.Len(t, dto.Timeline, 1)
	assert.Len(t, notifier.confirmed, 1)

	_, err = svc.MarkPaid(ctx, ownerActor(uuid.New()), order.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestLiveBucketsOrders(t *testing.T) {
	repo := newStubOrderRepo()
	outletID := uuid.New()
	repo.liveRows = []models.Order{
		{ID: uuid.New(), OutletID: outletID, Status: enums.OrderStatusPending},
		{ID: uuid.New(), OutletID: outletID, Status: enums.OrderStatusPending},
		{ID: uuid.New(), OutletID: outletID, Status: enums.OrderStatusProcessing},
		{ID: uuid.New(), OutletID: outletID, Status: enums.OrderStatusCompleted},
	}
	fixed := time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)
	svc, _ := newOrderService(t, repo, func() time.Time { return fixed })
	ctx := context.Background()

	dto, err := svc.Live(ctx, ownerActor(outletID))
	require.NoError(t, err)
	assert.Len(t, dto.New, 2)
	assert.Len(t, dto.Preparing, 1)
	assert.Len(t, dto.Completed, 1)
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), repo.liveSince)

	_, err = svc.Live(ctx, Actor{UserID: uuid.New(), Role: enums.UserRoleCustomer})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}
