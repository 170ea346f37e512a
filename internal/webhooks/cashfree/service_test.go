package cashfreewebhook

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/feastline/feastline-backend/internal/orders"
	"github.com/feastline/feastline-backend/pkg/db/models"
	"github.com/feastline/feastline-backend/pkg/enums"
	pkgerrors "github.com/feastline/feastline-backend/pkg/errors"
	"github.com/feastline/feastline-backend/pkg/logger"
	"github.com/feastline/feastline-backend/pkg/pagination"
)

type stubStore struct {
	keys map[string]struct{}
}

func newStubStore() *stubStore {
	return &stubStore{keys: make(map[string]struct{})}
}

func (s *stubStore) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if _, ok := s.keys[key]; ok {
		return false, nil
	}
	s.keys[key] = struct{}{}
	return true, nil
}

func (s *stubStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.keys, key)
	}
	return nil
}

func (s *stubStore) IdempotencyKey(scope, id string) string {
	return "fl:idempotency:" + scope + ":" + id
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOrdersRepo struct {
	orders    map[uuid.UUID]*models.Order
	timeline  map[uuid.UUID][]models.OrderTimelineItem
	updateErr error
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{
		orders:   make(map[uuid.UUID]*models.Order),
		timeline: make(map[uuid.UUID][]models.OrderTimelineItem),
	}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubOrdersRepo) Create(_ context.Context, order *models.Order) error {
	s.orders[order.ID] = order
	return nil
}

func (s *stubOrdersRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *stubOrdersRepo) UpsertTimelineStage(_ context.Context, item *models.OrderTimelineItem) error {
	entries := s.timeline[item.OrderID]
	for i := range entries {
		if entries[i].Stage == item.Stage {
			entries[i] = *item
			return nil
		}
	}
	s.timeline[item.OrderID] = append(entries, *item)
	return nil
}

func (s *stubOrdersRepo) SetPaymentSession(context.Context, uuid.UUID, string) error { return nil }

func (s *stubOrdersRepo) SetPaymentMethod(_ context.Context, orderID uuid.UUID, method enums.PaymentMethod) error {
	if order, ok := s.orders[orderID]; ok {
		order.PaymentMethod = method
	}
	return nil
}

func (s *stubOrdersRepo) UpdatePaymentStatus(_ context.Context, orderID uuid.UUID, from []enums.PaymentStatus, to enums.PaymentStatus) (bool, error) {
	if s.updateErr != nil {
		err := s.updateErr
		s.updateErr = nil
		return false, err
	}
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

func (s *stubOrdersRepo) UpdateStatus(context.Context, uuid.UUID, []enums.OrderStatus, enums.OrderStatus) (bool, error) {
	return false, nil
}

func (s *stubOrdersRepo) ListByUser(context.Context, uuid.UUID, orders.ListFilter, pagination.Params) ([]models.Order, string, error) {
	return nil, "", nil
}

func (s *stubOrdersRepo) ListByOutlet(context.Context, uuid.UUID, orders.ListFilter, pagination.Params) ([]models.Order, string, error) {
	return nil, "", nil
}

func (s *stubOrdersRepo) ListLive(context.Context, uuid.UUID, time.Time) ([]models.Order, error) {
	return nil, nil
}

type stubNotifier struct {
	confirmed []uuid.UUID
}

func (s *stubNotifier) PaymentConfirmed(_ context.Context, order *models.Order) {
	s.confirmed = append(s.confirmed, order.ID)
}

type fixture struct {
	svc      Service
	repo     *stubOrdersRepo
	notifier *stubNotifier
	store    *stubStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newStubStore()
	guard, err := NewIdempotencyGuard(store, time.Hour, "webhook")
	require.NoError(t, err)

	f := &fixture{
		repo:     newStubOrdersRepo(),
		notifier: &stubNotifier{},
		store:    store,
	}
	svc, err := NewService(ServiceParams{
		Orders:   f.repo,
		Guard:    guard,
		Tx:       stubTxRunner{},
		Notifier: f.notifier,
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func seedOnlineOrder(f *fixture, status enums.PaymentStatus) *models.Order {
	order := &models.Order{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		OutletID:      uuid.New(),
		PaymentStatus: status,
		PaymentMethod: enums.PaymentMethodOnline,
	}
	f.repo.orders[order.ID] = order
	return order
}

func stages(f *fixture, orderID uuid.UUID) []string {
	var out []string
	for _, entry := range f.repo.timeline[orderID] {
		out = append(out, entry.Stage)
	}
	return out
}

func TestProcessValidatesEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.Process(ctx, Event{OrderID: uuid.New(), Status: "SUCCESS"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	err = f.svc.Process(ctx, Event{ID: "evt-1", Status: "SUCCESS"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestProcessSuccessTransitionsAndFansOut(t *testing.T) {
	f := newFixture(t)
	order := seedOnlineOrder(f, enums.PaymentStatusActive)

	err := f.svc.Process(context.Background(), Event{
		ID:           "evt-1",
		OrderID:      order.ID,
		Status:       "SUCCESS",
		PaymentGroup: "upi",
	})
	require.NoError(t, err)

	assert.Equal(t, enums.PaymentStatusSuccess, order.PaymentStatus)
	assert.Equal(t, enums.PaymentMethodUPI, order.PaymentMethod)
	assert.Equal(t, []string{models.StagePaymentSuccess}, stages(f, order.ID))
	assert.Equal(t, []uuid.UUID{order.ID}, f.notifier.confirmed)
}

func TestProcessDuplicateDeliveryIsNoOp(t *testing.T) {
	f := newFixture(t)
	order := seedOnlineOrder(f, enums.PaymentStatusActive)
	event := Event{ID: "evt-1", OrderID: order.ID, Status: "SUCCESS"}
	ctx := context.Background()

	require.NoError(t, f.svc.Process(ctx, event))
	require.NoError(t, f.svc.Process(ctx, event))

	assert.Len(t, f.notifier.confirmed, 1)
	assert.Len(t, stages(f, order.ID), 1)
}

func TestProcessRedeliveryRefreshesTimelineStage(t *testing.T) {
	f := newFixture(t)
	order := seedOnlineOrder(f, enums.PaymentStatusActive)
	ctx := context.Background()

	require.NoError(t, f.svc.Process(ctx, Event{ID: "evt-1", OrderID: order.ID, Status: "SUCCESS"}))
	require.Len(t, f.repo.timeline[order.ID], 1)
	f.repo.timeline[order.ID][0].Done = false

	// Same terminal outcome delivered again under a fresh event id: the
	// existing stage is rewritten, no new stage and no second fan-out.
	require.NoError(t, f.svc.Process(ctx, Event{ID: "evt-2", OrderID: order.ID, Status: "SUCCESS"}))

	require.Len(t, f.repo.timeline[order.ID], 1)
	assert.Equal(t, models.StagePaymentSuccess, f.repo.timeline[order.ID][0].Stage)
	assert.True(t, f.repo.timeline[order.ID][0].Done)
	assert.Len(t, f.notifier.confirmed, 1)
}

func TestProcessPendingNeverRegressesTerminalState(t *testing.T) {
	f := newFixture(t)
	order := seedOnlineOrder(f, enums.PaymentStatusActive)
	ctx := context.Background()

	require.NoError(t, f.svc.Process(ctx, Event{ID: "evt-1", OrderID: order.ID, Status: "SUCCESS"}))

	// A delayed pending delivery for the same order, different event id.
	require.NoError(t, f.svc.Process(ctx, Event{ID: "evt-2", OrderID: order.ID, Status: "PENDING"}))

	assert.Equal(t, enums.PaymentStatusSuccess, order.PaymentStatus)
	assert.Equal(t, []string{models.StagePaymentSuccess}, stages(f, order.ID))
	assert.Len(t, f.notifier.confirmed, 1)
}

func TestProcessFailedThenSuccess(t *testing.T) {
	f := newFixture(t)
	order := seedOnlineOrder(f, enums.PaymentStatusActive)
	ctx := context.Background()

	require.NoError(t, f.svc.Process(ctx, Event{ID: "evt-1", OrderID: order.ID, Status: "USER_DROPPED"}))
	assert.Equal(t, enums.PaymentStatusFailed, order.PaymentStatus)
	assert.Empty(t, f.notifier.confirmed)

	// The customer retries and the second attempt succeeds.
	require.NoError(t, f.svc.Process(ctx, Event{ID: "evt-2", OrderID: order.ID, Status: "SUCCESS"}))
	assert.Equal(t, enums.PaymentStatusSuccess, order.PaymentStatus)
	assert.Equal(t, []string{models.StagePaymentFailed, models.StagePaymentSuccess}, stages(f, order.ID))
	assert.Len(t, f.notifier.confirmed, 1)
}

func TestProcessPendingWritesPendingStage(t *testing.T) {
	f := newFixture(t)
	order := seedOnlineOrder(f, enums.PaymentStatusActive)

	require.NoError(t, f.svc.Process(context.Background(), Event{ID: "evt-1", OrderID: order.ID, Status: "PENDING"}))

	assert.Equal(t, enums.PaymentStatusPending, order.PaymentStatus)
	require.Len(t, f.repo.timeline[order.ID], 1)
	assert.Equal(t, models.StagePaymentPending, f.repo.timeline[order.ID][0].Stage)
	assert.False(t, f.repo.timeline[order.ID][0].Done)
}

func TestProcessFailureReleasesIdempotencyKey(t *testing.T) {
	f := newFixture(t)
	order := seedOnlineOrder(f, enums.PaymentStatusActive)
	f.repo.updateErr = errors.New("db down")
	event := Event{ID: "evt-1", OrderID: order.ID, Status: "SUCCESS"}
	ctx := context.Background()

	err := f.svc.Process(ctx, event)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Empty(t, f.store.keys)

	// The gateway retry is processed normally.
	require.NoError(t, f.svc.Process(ctx, event))
	assert.Equal(t, enums.PaymentStatusSuccess, order.PaymentStatus)
	assert.Len(t, f.notifier.confirmed, 1)
}

func TestProcessUnknownOrderDoesNothing(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Process(context.Background(), Event{ID: "evt-1", OrderID: uuid.New(), Status: "SUCCESS"})
	require.NoError(t, err)
	assert.Empty(t, f.notifier.confirmed)
}
