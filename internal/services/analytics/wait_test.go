package analytics

import (
	"testing"

	"PriceSignal/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFixture() []models.Observation {
	return []models.Observation{
		// frequent deals, currently expensive
		obs("w1", 50, 3.00, withSavings(20)), obs("w1", 40, 3.00, withSavings(20)), obs("w1", 30, 3.00, withSavings(20)),
		obs("w1", 5, 5.00), obs("w1", 1, 5.00),
		// well above average, no deals
		obs("w2", 50, 4.00), obs("w2", 40, 4.00), obs("w2", 30, 4.00), obs("w2", 20, 4.00), obs("w2", 1, 5.00),
		// above the narrative threshold only: not a wait signal
		obs("w3", 50, 4.00), obs("w3", 40, 4.00), obs("w3", 30, 4.00), obs("w3", 1, 4.60),
		// two deals a month ago, next one due
		obs("w4", 40, 3.50, withSavings(20)), obs("w4", 30, 3.50, withSavings(20)),
		obs("w4", 20, 4.00), obs("w4", 10, 4.00), obs("w4", 1, 4.00),
	}
}

func TestWaitSignals(t *testing.T) {
	got := Wait(waitFixture(), asOf)
	require.Len(t, got, 3)

	assert.Equal(t, "w1", got[0].SKU)
	assert.Equal(t, "Frequent deals (3 in 60 days), currently expensive", got[0].Reason)
	assert.Equal(t, 3, got[0].DealCount)
	require.NotNil(t, got[0].DaysSinceLastDeal)
	assert.Equal(t, 30, *got[0].DaysSinceLastDeal)
	assert.InDelta(t, 3.00, got[0].ExpectedPrice, 1e-9)

	assert.Equal(t, "w2", got[1].SKU)
	assert.Equal(t, "Price 19% above average", got[1].Reason)
	assert.Nil(t, got[1].DaysSinceLastDeal)

	assert.Equal(t, "w4", got[2].SKU)
	assert.Equal(t, "Deal likely soon (last deal 30 days ago)", got[2].Reason)
	assert.InDelta(t, 3.50, got[2].ExpectedPrice, 1e-9)
}

func TestWaitDealThresholdIsExclusive(t *testing.T) {
	rows := []models.Observation{
		obs("x", 40, 3.00, withSavings(15)), obs("x", 30, 3.00, withSavings(15)), obs("x", 20, 3.00, withSavings(15)),
		obs("x", 1, 3.00),
	}
	assert.Empty(t, Wait(rows, asOf))
}

func TestWaitOrderingByPremiumThenDaysSince(t *testing.T) {
	rows := []models.Observation{
		// same premium over the minimum (1.00), different deal recency
		obs("recent", 40, 3.00, withSavings(20)), obs("recent", 15, 3.00, withSavings(20)), obs("recent", 1, 4.00),
		obs("older", 40, 3.00, withSavings(20)), obs("older", 30, 3.00, withSavings(20)), obs("older", 1, 4.00),
	}
	got := Wait(rows, asOf)
	require.Len(t, got, 2)
	assert.Equal(t, "older", got[0].SKU)
	assert.Equal(t, "recent", got[1].SKU)
}

func TestWaitOrderingUsesUnroundedPremium(t *testing.T) {
	rows := []models.Observation{
		obs("x", 40, 3.00), obs("x", 30, 3.00), obs("x", 20, 3.00), obs("x", 10, 3.00), obs("x", 1, 4.004),
		obs("y", 40, 3.00), obs("y", 30, 3.00, withSavings(20)), obs("y", 20, 3.00), obs("y", 10, 3.00), obs("y", 1, 4.001),
	}
	got := Wait(rows, asOf)
	require.Len(t, got, 2)
	// both round to a 1.00 premium; the larger raw premium still wins
	assert.Equal(t, got[0].CurrentPrice-got[0].MinPrice, got[1].CurrentPrice-got[1].MinPrice)
	assert.Equal(t, "x", got[0].SKU)
	assert.Equal(t, "y", got[1].SKU)
}
