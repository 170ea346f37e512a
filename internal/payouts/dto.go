package payouts

import (
	"github.com/shopspring/decimal"

	"github.com/feastline/feastline-backend/pkg/enums"
)

// DailyRevenueDTO is one day's gateway revenue.
type DailyRevenueDTO struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total_payment"`
}

// PayoutDTO is one day's settlement row.
type PayoutDTO struct {
	Date   string             `json:"date"`
	Amount decimal.Decimal    `json:"amount"`
	Status enums.PayoutStatus `json:"status"`
}

// SettlementDTO pairs live per-day revenue with the frozen payout rows.
type SettlementDTO struct {
	OrdersByDay  []DailyRevenueDTO `json:"orders_by_day"`
	PayoutsByDay []PayoutDTO       `json:"payouts_by_day"`
}
