package dashboard

import "github.com/shopspring/decimal"

// StatsDTO is the owner dashboard payload. TodaysOrders is always live;
// the remaining fields may be up to the cache TTL stale.
type StatsDTO struct {
	TodaysRevenue   decimal.Decimal `json:"todays_revenue"`
	TodaysOrders    int64           `json:"todays_orders"`
	OrdersLastWeek  int64           `json:"orders_last_week"`
	OrdersThisMonth int64           `json:"orders_this_month"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	AverageRevenue  decimal.Decimal `json:"average_revenue"`
	Series          []DailyStat     `json:"series"`
}

func toStatsDTO(stats *Stats) *StatsDTO {
	return &StatsDTO{
		TodaysRevenue:   stats.TodaysRevenue,
		OrdersLastWeek:  stats.OrdersLastWeek,
		OrdersThisMonth: stats.OrdersThisMonth,
		TotalRevenue:    stats.TotalRevenue,
		AverageRevenue:  stats.AverageRevenue,
		Series:          stats.Series,
	}
}
