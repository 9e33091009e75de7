package investService

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/utils"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// valueHoldings derives the valuation metrics for each position against the
// snapshot map. Positions without a snapshot are skipped with a warning so a
// single missing quote degrades the view instead of failing it. Two passes:
// the portfolio weight needs the total, and the total needs every holding.
func valueHoldings(ctx context.Context, positions []model.Position, snapshots map[string]model.Stock) []model.Holding {
	rqID := utils.GetRequestIDFromCtx(ctx)

	holdings := make([]model.Holding, 0, len(positions))
	totalValue := decimal.Zero

	for _, position := range positions {
		stock, ok := snapshots[position.Symbol]
		if !ok {
			slog.Warn("no price snapshot for position, skipping", slog.String("rqID", rqID), slog.String("symbol", position.Symbol))
			continue
		}

		currentValue := position.Shares.Mul(stock.Price)
		costBasis := position.Shares.Mul(position.AvgPrice)
		gainLoss := currentValue.Sub(costBasis)

		gainLossPercent := decimal.Zero
		if !costBasis.IsZero() {
			gainLossPercent = gainLoss.Div(costBasis).Mul(hundred)
		}

		holdings = append(holdings, model.Holding{
			Position:        position,
			Stock:           stock,
			CurrentValue:    currentValue,
			CostBasis:       costBasis,
			GainLoss:        gainLoss,
			GainLossPercent: gainLossPercent,
		})

		totalValue = totalValue.Add(currentValue)
	}

	for i := range holdings {
		if !totalValue.IsZero() {
			holdings[i].PortfolioPercent = holdings[i].CurrentValue.Div(totalValue).Mul(hundred)
		}
	}

	return holdings
}

// summarize folds valued holdings into portfolio totals. buyingPower is the
// portfolio cash balance, or the default when no portfolio context exists.
func summarize(holdings []model.Holding, buyingPower decimal.Decimal) model.PortfolioSummary {
	summary := model.PortfolioSummary{
		TotalValue:       decimal.Zero,
		TotalCost:        decimal.Zero,
		TotalGain:        decimal.Zero,
		TotalGainPercent: decimal.Zero,
		DayChange:        decimal.Zero,
		DayChangePercent: decimal.Zero,
		BuyingPower:      buyingPower,
	}

	for _, holding := range holdings {
		summary.TotalValue = summary.TotalValue.Add(holding.CurrentValue)
		summary.TotalCost = summary.TotalCost.Add(holding.CostBasis)
		summary.DayChange = summary.DayChange.Add(holding.Shares.Mul(holding.Stock.Change))
	}

	summary.TotalGain = summary.TotalValue.Sub(summary.TotalCost)
	if !summary.TotalCost.IsZero() {
		summary.TotalGainPercent = summary.TotalGain.Div(summary.TotalCost).Mul(hundred)
	}

	// yesterday's close of the whole book; the percent stays zero for an
	// empty or worthless book and when the day change exactly cancels the value
	prevValue := summary.TotalValue.Sub(summary.DayChange)
	if summary.TotalValue.IsPositive() && !prevValue.IsZero() {
		summary.DayChangePercent = summary.DayChange.Div(prevValue).Mul(hundred)
	}

	return summary
}
