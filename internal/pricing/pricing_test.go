package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLineTotalBasePriceOnly(t *testing.T) {
	line := Line{BasePrice: dec("120.00"), Quantity: 3}
	assert.True(t, LineTotal(line).Equal(dec("360.00")), "got %s", LineTotal(line))
}

func TestLineTotalVariantReplacesBase(t *testing.T) {
	variant := dec("150.00")
	line := Line{BasePrice: dec("120.00"), VariantPrice: &variant, Quantity: 2}
	assert.True(t, LineTotal(line).Equal(dec("300.00")), "got %s", LineTotal(line))
}

func TestLineTotalAddonsJoinUnitPrice(t *testing.T) {
	line := Line{
		BasePrice:   dec("100.00"),
		AddonPrices: []decimal.Decimal{dec("20.00"), dec("15.50")},
		Quantity:    2,
	}
	// (100 + 20 + 15.50) * 2
	assert.True(t, LineTotal(line).Equal(dec("271.00")), "got %s", LineTotal(line))
}

func TestLineTotalVariantAndAddons(t *testing.T) {
	variant := dec("180.00")
	line := Line{
		BasePrice:    dec("120.00"),
		VariantPrice: &variant,
		AddonPrices:  []decimal.Decimal{dec("30.00")},
		Quantity:     1,
	}
	assert.True(t, LineTotal(line).Equal(dec("210.00")), "got %s", LineTotal(line))
}

func TestLineTotalNegativeQuantityIsZero(t *testing.T) {
	line := Line{BasePrice: dec("50.00"), Quantity: -2}
	assert.True(t, LineTotal(line).IsZero())
}

func TestTotalSumsLines(t *testing.T) {
	variant := dec("90.00")
	lines := []Line{
		{BasePrice: dec("40.00"), Quantity: 2},
		{BasePrice: dec("60.00"), VariantPrice: &variant, Quantity: 1},
	}
	assert.True(t, Total(lines).Equal(dec("170.00")), "got %s", Total(lines))
}

func TestTotalEmptyIsZero(t *testing.T) {
	assert.True(t, Total(nil).IsZero())
}
