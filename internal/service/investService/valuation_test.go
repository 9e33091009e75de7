package investService

import (
	"context"
	"testing"

	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func position(symbol string, shares, avgPrice string) model.Position {
	return model.Position{
		Symbol:   symbol,
		Shares:   decimal.RequireFromString(shares),
		AvgPrice: decimal.RequireFromString(avgPrice),
	}
}

func snapshot(symbol string, price, change string) model.Stock {
	return model.Stock{
		Symbol: symbol,
		Price:  decimal.RequireFromString(price),
		Change: decimal.RequireFromString(change),
	}
}

func TestValueHoldings(t *testing.T) {
	ctx := context.Background()

	positions := []model.Position{
		position("AAPL", "10", "100"),
		position("MSFT", "5", "200"),
	}
	snapshots := map[string]model.Stock{
		"AAPL": snapshot("AAPL", "150", "2"),
		"MSFT": snapshot("MSFT", "180", "-1"),
	}

	holdings := valueHoldings(ctx, positions, snapshots)
	require.Len(t, holdings, 2)

	aapl := holdings[0]
	assert.True(t, aapl.CurrentValue.Equal(decimal.RequireFromString("1500")), "currentValue = %s", aapl.CurrentValue)
	assert.True(t, aapl.CostBasis.Equal(decimal.RequireFromString("1000")))
	assert.True(t, aapl.GainLoss.Equal(decimal.RequireFromString("500")))
	assert.True(t, aapl.GainLossPercent.Equal(decimal.RequireFromString("50")))

	msft := holdings[1]
	assert.True(t, msft.GainLoss.Equal(decimal.RequireFromString("-100")))
	assert.True(t, msft.GainLossPercent.Equal(decimal.RequireFromString("-10")))

	// weights must sum to 100 within a cent
	weightSum := aapl.PortfolioPercent.Add(msft.PortfolioPercent)
	assert.True(t, weightSum.Sub(decimal.RequireFromString("100")).Abs().LessThan(decimal.RequireFromString("0.01")), "weights sum = %s", weightSum)
}

func TestValueHoldingsSkipsMissingSnapshot(t *testing.T) {
	positions := []model.Position{
		position("AAPL", "10", "100"),
		position("GHOST", "3", "50"),
	}
	snapshots := map[string]model.Stock{
		"AAPL": snapshot("AAPL", "150", "0"),
	}

	holdings := valueHoldings(context.Background(), positions, snapshots)
	require.Len(t, holdings, 1)
	assert.Equal(t, "AAPL", holdings[0].Symbol)
	assert.True(t, holdings[0].PortfolioPercent.Equal(decimal.RequireFromString("100")))
}

func TestValueHoldingsEmpty(t *testing.T) {
	holdings := valueHoldings(context.Background(), nil, map[string]model.Stock{})
	assert.Empty(t, holdings)
}

func TestSummarize(t *testing.T) {
	positions := []model.Position{
		position("AAPL", "10", "100"),
		position("MSFT", "5", "200"),
	}
	snapshots := map[string]model.Stock{
		"AAPL": snapshot("AAPL", "150", "2"),
		"MSFT": snapshot("MSFT", "180", "-1"),
	}

	holdings := valueHoldings(context.Background(), positions, snapshots)
	summary := summarize(holdings, decimal.RequireFromString("5000"))

	assert.True(t, summary.TotalValue.Equal(decimal.RequireFromString("2400")))
	assert.True(t, summary.TotalCost.Equal(decimal.RequireFromString("2000")))
	assert.True(t, summary.TotalGain.Equal(decimal.RequireFromString("400")))
	assert.True(t, summary.TotalGainPercent.Equal(decimal.RequireFromString("20")))

	// dayChange = 10*2 + 5*(-1) = 15; previous close = 2400 - 15 = 2385
	assert.True(t, summary.DayChange.Equal(decimal.RequireFromString("15")))
	expectedDayPercent := decimal.RequireFromString("15").Div(decimal.RequireFromString("2385")).Mul(decimal.RequireFromString("100"))
	assert.True(t, summary.DayChangePercent.Equal(expectedDayPercent))

	assert.True(t, summary.BuyingPower.Equal(decimal.RequireFromString("5000")))

	// summary reconciles with its own parts
	assert.True(t, summary.TotalValue.Sub(summary.TotalCost).Equal(summary.TotalGain))
}

func TestSummarizeEmpty(t *testing.T) {
	summary := summarize(nil, decimal.RequireFromString("10000"))

	assert.True(t, summary.TotalValue.IsZero())
	assert.True(t, summary.TotalCost.IsZero())
	assert.True(t, summary.TotalGain.IsZero())
	assert.True(t, summary.TotalGainPercent.IsZero())
	assert.True(t, summary.DayChange.IsZero())
	assert.True(t, summary.DayChangePercent.IsZero())
	assert.True(t, summary.BuyingPower.Equal(decimal.RequireFromString("10000")))
}

func TestSummarizeDayChangeDenominatorGuard(t *testing.T) {
	// value 100 with day change 100 means yesterday's close was zero
	holdings := []model.Holding{
		{
			Position:     position("PUMP", "1", "0.01"),
			Stock:        snapshot("PUMP", "100", "100"),
			CurrentValue: decimal.RequireFromString("100"),
			CostBasis:    decimal.RequireFromString("0.01"),
		},
	}

	summary := summarize(holdings, decimal.Zero)
	assert.True(t, summary.DayChange.Equal(decimal.RequireFromString("100")))
	assert.True(t, summary.DayChangePercent.IsZero())
}

func TestSummarizeWorthlessBookDayChange(t *testing.T) {
	// a position priced to zero still carries yesterday's drop, but a
	// worthless book has no meaningful day-change percent
	holdings := []model.Holding{
		{
			Position:     position("BUST", "1", "5"),
			Stock:        snapshot("BUST", "0", "-5"),
			CurrentValue: decimal.Zero,
			CostBasis:    decimal.RequireFromString("5"),
		},
	}

	summary := summarize(holdings, decimal.Zero)
	assert.True(t, summary.TotalValue.IsZero())
	assert.True(t, summary.DayChange.Equal(decimal.RequireFromString("-5")))
	assert.True(t, summary.DayChangePercent.IsZero())
}

func TestSummarizeZeroCostBasis(t *testing.T) {
	summary := summarize([]model.Holding{
		{
			Position:     position("FREE", "10", "0"),
			Stock:        snapshot("FREE", "5", "0"),
			CurrentValue: decimal.RequireFromString("50"),
			CostBasis:    decimal.Zero,
		},
	}, decimal.Zero)

	assert.True(t, summary.TotalGain.Equal(decimal.RequireFromString("50")))
	assert.True(t, summary.TotalGainPercent.IsZero())
}
