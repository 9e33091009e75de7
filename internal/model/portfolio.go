package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	UserID    int64
	Username  string
	CreatedAt time.Time
}

type Portfolio struct {
	PortfolioID int64
	UserID      int64
	Name        string
	Description string
	CashBalance decimal.Decimal
	IsDefault   bool
	CreatedAt   time.Time
}

// Position is one open holding: at most one row per (portfolio, symbol),
// quantity and weighted-average purchase price.
type Position struct {
	PositionID  int64
	PortfolioID int64
	Symbol      string
	Shares      decimal.Decimal
	AvgPrice    decimal.Decimal
	AddedAt     time.Time
}

// Holding is a position joined with its catalog snapshot and the derived
// valuation metrics.
type Holding struct {
	Position
	Stock            Stock
	CurrentValue     decimal.Decimal
	CostBasis        decimal.Decimal
	GainLoss         decimal.Decimal
	GainLossPercent  decimal.Decimal
	PortfolioPercent decimal.Decimal
}

type PortfolioSummary struct {
	TotalValue       decimal.Decimal
	TotalCost        decimal.Decimal
	TotalGain        decimal.Decimal
	TotalGainPercent decimal.Decimal
	DayChange        decimal.Decimal
	DayChangePercent decimal.Decimal
	BuyingPower      decimal.Decimal
}

type CashDirection string

const (
	CashDeposit  CashDirection = "deposit"
	CashWithdraw CashDirection = "withdraw"
)
