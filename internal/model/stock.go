package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock is the last-known snapshot for a symbol. No history is kept: a price
// refresh fully replaces the price-derived fields.
type Stock struct {
	Symbol        string
	Name          string
	Price         decimal.Decimal
	Change        decimal.Decimal
	ChangePercent decimal.Decimal
	Volume        int64
	MarketCap     *decimal.Decimal
	PE            *decimal.Decimal
	LastUpdated   time.Time
}

type MarketIndex struct {
	Symbol        string
	Name          string
	Price         decimal.Decimal
	Change        decimal.Decimal
	ChangePercent decimal.Decimal
	LastUpdated   time.Time
}

type WatchlistItem struct {
	WatchlistID int64
	UserID      int64
	PortfolioID int64
	Symbol      string
	AddedAt     time.Time
}

type StockWithRecommendation struct {
	Stock
	Recommendation *Recommendation
}
