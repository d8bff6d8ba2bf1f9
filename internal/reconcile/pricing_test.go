package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

func TestAggregatePriceQuantity_Empty(t *testing.T) {
	summary := AggregatePriceQuantity(nil)
	assert.Nil(t, summary.MinPrice)
	assert.Nil(t, summary.MaxPrice)
	assert.Equal(t, 0, summary.Quantity)
}

func TestAggregatePriceQuantity_SaleFloorOnlyLowers(t *testing.T) {
	// Lowest sale price (90) above the lowest regular price (80): the
	// regular price wins.
	summary := AggregatePriceQuantity([]VariationOptionValues{
		{Price: fp(100), SalePrice: fp(90)},
		{Price: fp(80)},
	})
	assert.Equal(t, 80.0, *summary.MinPrice)
	assert.Equal(t, 100.0, *summary.MaxPrice)

	// Lowest sale price (70) below every regular price: the sale price wins.
	summary = AggregatePriceQuantity([]VariationOptionValues{
		{Price: fp(100), SalePrice: fp(70)},
		{Price: fp(80)},
	})
	assert.Equal(t, 70.0, *summary.MinPrice)
	assert.Equal(t, 100.0, *summary.MaxPrice)
}

func TestAggregatePriceQuantity_MaxIgnoresSalePrice(t *testing.T) {
	summary := AggregatePriceQuantity([]VariationOptionValues{
		{Price: fp(50), SalePrice: fp(200)},
		{Price: fp(60)},
	})
	assert.Equal(t, 60.0, *summary.MaxPrice)
}

func TestAggregatePriceQuantity_QuantitySumTreatsMissingAsZero(t *testing.T) {
	summary := AggregatePriceQuantity([]VariationOptionValues{
		{Price: fp(10), Quantity: ip(3)},
		{Price: fp(10)},
		{Price: fp(10), Quantity: ip(5)},
	})
	assert.Equal(t, 8, summary.Quantity)
}

func TestAggregatePriceQuantity_EqualPricesStable(t *testing.T) {
	summary := AggregatePriceQuantity([]VariationOptionValues{
		{Price: fp(42)},
		{Price: fp(42)},
	})
	assert.Equal(t, 42.0, *summary.MinPrice)
	assert.Equal(t, 42.0, *summary.MaxPrice)
}
