package payouts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgdb "github.com/feastline/feastline-backend/pkg/db"
	"github.com/feastline/feastline-backend/pkg/db/models"
	"github.com/feastline/feastline-backend/pkg/enums"
)

func setupPayoutsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  outlet_id TEXT NOT NULL,
  table_id TEXT,
  order_type TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'active',
  payment_method TEXT NOT NULL,
  payment_session_id TEXT,
  cooking_instructions TEXT,
  coupon_id TEXT,
  subtotal NUMERIC NOT NULL,
  discount NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	payouts := `
CREATE TABLE IF NOT EXISTS payouts (
  id TEXT PRIMARY KEY,
  outlet_id TEXT NOT NULL,
  date DATETIME NOT NULL,
  amount NUMERIC NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (outlet_id, date)
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(payouts).Error)
	return db
}

func seedSettleOrder(t *testing.T, db *gorm.DB, outletID uuid.UUID, created time.Time, method enums.PaymentMethod, payment enums.PaymentStatus, total string) {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		OutletID:      outletID,
		OrderType:     enums.OrderTypeTakeaway,
		Status:        enums.OrderStatusCompleted,
		PaymentStatus: payment,
		PaymentMethod: method,
		Subtotal:      decimal.RequireFromString(total),
		Discount:      decimal.Zero,
		Total:         decimal.RequireFromString(total),
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	require.NoError(t, db.Create(order).Error)
}

func TestListSettleableFilters(t *testing.T) {
	db := setupPayoutsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	outletID := uuid.New()
	since := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	inWindow := since.Add(30 * time.Hour)

	// Counts toward settlement.
	seedSettleOrder(t, db, outletID, inWindow, enums.PaymentMethodOnline, enums.PaymentStatusSuccess, "400.00")
	seedSettleOrder(t, db, outletID, inWindow, enums.PaymentMethodUPI, enums.PaymentStatusSuccess, "150.00")
	// Excluded: cash, unpaid, too old, foreign outlet.
	seedSettleOrder(t, db, outletID, inWindow, enums.PaymentMethodCash, enums.PaymentStatusSuccess, "999.00")
	seedSettleOrder(t, db, outletID, inWindow, enums.PaymentMethodOnline, enums.PaymentStatusPending, "999.00")
	seedSettleOrder(t, db, outletID, since.Add(-time.Hour), enums.PaymentMethodOnline, enums.PaymentStatusSuccess, "999.00")
	seedSettleOrder(t, db, uuid.New(), inWindow, enums.PaymentMethodOnline, enums.PaymentStatusSuccess, "999.00")

	orders, err := repo.ListSettleable(ctx, outletID, since)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.True(t, orders[0].Total.Add(orders[1].Total).Equal(decimal.RequireFromString("550.00")))
}

func TestPayoutCreateUniquePerOutletDay(t *testing.T) {
	db := setupPayoutsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	outletID := uuid.New()
	day := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

	first := &models.Payout{
		ID:       uuid.New(),
		OutletID: outletID,
		Date:     day,
		Amount:   decimal.RequireFromString("550.00"),
		Status:   enums.PayoutStatusPending,
	}
	require.NoError(t, repo.Create(ctx, first))

	dup := &models.Payout{
		ID:       uuid.New(),
		OutletID: outletID,
		Date:     day,
		Amount:   decimal.RequireFromString("999.00"),
		Status:   enums.PayoutStatusPending,
	}
	err := repo.Create(ctx, dup)
	require.Error(t, err)
	assert.True(t, pkgdb.IsUniqueViolation(err, ""))

	found, err := repo.FindByOutletAndDate(ctx, outletID, day)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.Amount.Equal(first.Amount))

	missing, err := repo.FindByOutletAndDate(ctx, outletID, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListByOutletOrderedByDate(t *testing.T) {
	db := setupPayoutsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	outletID := uuid.New()

	for _, day := range []int{11, 9, 10} {
		require.NoError(t, repo.Create(ctx, &models.Payout{
			ID:       uuid.New(),
			OutletID: outletID,
			Date:     time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC),
			Amount:   decimal.RequireFromString("100.00"),
			Status:   enums.PayoutStatusPending,
		}))
	}

	payouts, err := repo.ListByOutlet(ctx, outletID, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, payouts, 2)
	assert.True(t, payouts[0].Date.Before(payouts[1].Date))
}
