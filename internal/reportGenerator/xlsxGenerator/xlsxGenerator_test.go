package xlsxGenerator

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCreatePortfolioReport(t *testing.T) {
	portfolio := model.Portfolio{
		PortfolioID: 42,
		Name:        "My Portfolio",
		CashBalance: decimal.RequireFromString("5000"),
	}
	holdings := []model.Holding{
		{
			Position: model.Position{
				Symbol:   "AAPL",
				Shares:   decimal.RequireFromString("10"),
				AvgPrice: decimal.RequireFromString("100"),
			},
			Stock: model.Stock{
				Symbol: "AAPL",
				Name:   "Apple Inc.",
				Price:  decimal.RequireFromString("150"),
			},
			CurrentValue:     decimal.RequireFromString("1500"),
			CostBasis:        decimal.RequireFromString("1000"),
			GainLoss:         decimal.RequireFromString("500"),
			GainLossPercent:  decimal.RequireFromString("50"),
			PortfolioPercent: decimal.RequireFromString("100"),
		},
	}
	summary := model.PortfolioSummary{
		TotalValue:  decimal.RequireFromString("1500"),
		TotalCost:   decimal.RequireFromString("1000"),
		TotalGain:   decimal.RequireFromString("500"),
		BuyingPower: decimal.RequireFromString("5000"),
	}

	fileBytes, filename, err := New().CreatePortfolioReport(context.Background(), portfolio, holdings, summary)
	require.NoError(t, err)
	assert.Equal(t, "portfolio_42.xlsx", filename)
	require.NotEmpty(t, fileBytes)

	f, err := excelize.OpenReader(bytes.NewReader(fileBytes))
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), "My Portfolio")

	symbol, err := f.GetCellValue("My Portfolio", "A3")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", symbol)

	name, err := f.GetCellValue("My Portfolio", "B3")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", name)
}

func TestSheetNameFor(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "My Portfolio", want: "My Portfolio"},
		{name: "illegal characters stripped", in: "Tech/Growth [2024]?*", want: "TechGrowth 2024"},
		{name: "truncated to 31 chars", in: strings.Repeat("a", 40), want: strings.Repeat("a", 31)},
		{name: "only illegal characters", in: "/\\?*[]", want: "Portfolio"},
		{name: "empty", in: "", want: "Portfolio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sheetNameFor(tt.in))
		})
	}
}

func TestCreatePortfolioReportIllegalSheetName(t *testing.T) {
	portfolio := model.Portfolio{PortfolioID: 7, Name: "Tech/Growth [2024]"}

	fileBytes, filename, err := New().CreatePortfolioReport(context.Background(), portfolio, nil, model.PortfolioSummary{})
	require.NoError(t, err)
	assert.Equal(t, "portfolio_7.xlsx", filename)

	f, err := excelize.OpenReader(bytes.NewReader(fileBytes))
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), "TechGrowth 2024")
}

func TestCreatePortfolioReportEmptyNameFallback(t *testing.T) {
	fileBytes, filename, err := New().CreatePortfolioReport(context.Background(), model.Portfolio{PortfolioID: 1}, nil, model.PortfolioSummary{})
	require.NoError(t, err)
	assert.Equal(t, "portfolio_1.xlsx", filename)
	require.NotEmpty(t, fileBytes)

	f, err := excelize.OpenReader(bytes.NewReader(fileBytes))
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), "Portfolio")
}
