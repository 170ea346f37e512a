package pricing

import (
	"github.com/shopspring/decimal"
)

// Line is the priceable view of a cart or order line. When VariantPrice is
// set it replaces BasePrice; add-on prices join the per-unit amount before
// the quantity multiplier.
type Line struct {
	BasePrice    decimal.Decimal
	VariantPrice *decimal.Decimal
	AddonPrices  []decimal.Decimal
	Quantity     int
}

// UnitPrice returns the per-unit amount for the line.
func UnitPrice(line Line) decimal.Decimal {
	unit := line.BasePrice
	if line.VariantPrice != nil {
		unit = *line.VariantPrice
	}
	for _, addon := range line.AddonPrices {
		unit = unit.Add(addon)
	}
	return unit
}

// LineTotal computes unit price times quantity. The same rule runs at
// cart-add time, checkout time, and display time, so it must stay
// deterministic and free of I/O.
func LineTotal(line Line) decimal.Decimal {
	qty := line.Quantity
	if qty < 0 {
		qty = 0
	}
	return UnitPrice(line).Mul(decimal.NewFromInt(int64(qty)))
}

// Total sums the line totals of a cart or order.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(LineTotal(line))
	}
	return total
}
