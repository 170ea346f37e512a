package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/feastline/feastline-backend/pkg/enums"
)

// DailyStat is one day of the owner's order/revenue graph.
type DailyStat struct {
	Date       string          `json:"date"`
	OrderCount int64           `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// Stats bundles the aggregates the dashboard caches.
type Stats struct {
	TodaysRevenue   decimal.Decimal `json:"todays_revenue"`
	OrdersLastWeek  int64           `json:"orders_last_week"`
	OrdersThisMonth int64           `json:"orders_this_month"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	AverageRevenue  decimal.Decimal `json:"average_revenue"`
	Series          []DailyStat     `json:"series"`
}

// Repository computes dashboard aggregates over an outlet's paid orders.
type Repository interface {
	Stats(ctx context.Context, outletID uuid.UUID, now time.Time) (*Stats, error)
	TodaysOrderCount(ctx context.Context, outletID uuid.UUID, startOfToday time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a dashboard repository bound to the DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

const revenueAndDaysQuery = `
SELECT COALESCE(SUM(total), 0)                        AS revenue,
       COUNT(DISTINCT CAST(date(created_at) AS TEXT)) AS days
FROM orders
WHERE outlet_id = ? AND payment_status = ?`

const dailySeriesQuery = `
SELECT CAST(date(created_at) AS TEXT) AS date,
       COUNT(*)                       AS order_count,
       COALESCE(SUM(total), 0)        AS revenue
FROM orders
WHERE outlet_id = ? AND payment_status = ?
GROUP BY CAST(date(created_at) AS TEXT)
ORDER BY date
LIMIT 7`

func (r *repository) Stats(ctx context.Context, outletID uuid.UUID, now time.Time) (*Stats, error) {
	startOfToday := startOfDay(now)
	startOfLastWeek := startOfToday.AddDate(0, 0, -7)
	startOfWeekBefore := startOfToday.AddDate(0, 0, -14)
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := &Stats{}

	todays, err := r.sumRevenue(ctx, outletID, startOfToday)
	if err != nil {
		return nil, err
	}
	stats.TodaysRevenue = todays

	if err := r.paidOrders(ctx, outletID).
		Where("created_at >= ? AND created_at < ?", startOfWeekBefore, startOfLastWeek).
		Count(&stats.OrdersLastWeek).Error; err != nil {
		return nil, err
	}
	if err := r.paidOrders(ctx, outletID).
		Where("created_at >= ?", startOfMonth).
		Count(&stats.OrdersThisMonth).Error; err != nil {
		return nil, err
	}

	var totals struct {
		Revenue decimal.Decimal
		Days    int64
	}
	err = r.db.WithContext(ctx).
		Raw(revenueAndDaysQuery, outletID, enums.PaymentStatusSuccess).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	stats.TotalRevenue = totals.Revenue
	if totals.Days > 0 {
		stats.AverageRevenue = totals.Revenue.Div(decimal.NewFromInt(totals.Days)).Round(2)
	} else {
		stats.AverageRevenue = decimal.Zero
	}

	var series []DailyStat
	err = r.db.WithContext(ctx).
		Raw(dailySeriesQuery, outletID, enums.PaymentStatusSuccess).
		Scan(&series).Error
	if err != nil {
		return nil, err
	}
	stats.Series = series

	return stats, nil
}

func (r *repository) TodaysOrderCount(ctx context.Context, outletID uuid.UUID, startOfToday time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("orders").
		Where("outlet_id = ? AND created_at >= ?", outletID, startOfToday).
		Count(&count).Error
	return count, err
}

func (r *repository) sumRevenue(ctx context.Context, outletID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	var row struct {
		Revenue decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Raw(`SELECT COALESCE(SUM(total), 0) AS revenue FROM orders
WHERE outlet_id = ? AND payment_status = ? AND created_at >= ?`,
			outletID, enums.PaymentStatusSuccess, since).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Revenue, nil
}

func (r *repository) paidOrders(ctx context.Context, outletID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("orders").
		Where("outlet_id = ? AND payment_status = ?", outletID, enums.PaymentStatusSuccess)
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
