package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Stock struct {
	Symbol        string           `db:"symbol"`
	Name          string           `db:"name"`
	Price         decimal.Decimal  `db:"price"`
	Change        decimal.Decimal  `db:"change"`
	ChangePercent decimal.Decimal  `db:"change_percent"`
	Volume        int64            `db:"volume"`
	MarketCap     *decimal.Decimal `db:"market_cap"`
	PE            *decimal.Decimal `db:"pe"`
	LastUpdated   time.Time        `db:"last_updated"`
}

type MarketIndex struct {
	Symbol        string          `db:"symbol"`
	Name          string          `db:"name"`
	Price         decimal.Decimal `db:"price"`
	Change        decimal.Decimal `db:"change"`
	ChangePercent decimal.Decimal `db:"change_percent"`
	LastUpdated   time.Time       `db:"last_updated"`
}

type WatchlistItem struct {
	WatchlistID int64     `db:"watchlist_id"`
	UserID      int64     `db:"user_id"`
	PortfolioID int64     `db:"portfolio_id"`
	Symbol      string    `db:"symbol"`
	AddedAt     time.Time `db:"added_at"`
}

type Recommendation struct {
	RecommendationID int64            `db:"recommendation_id"`
	Symbol           string           `db:"symbol"`
	Action           string           `db:"action"`
	Confidence       string           `db:"confidence"`
	Reason           string           `db:"reason"`
	TargetPrice      *decimal.Decimal `db:"target_price"`
	Allocation       *decimal.Decimal `db:"allocation"`
	RecType          string           `db:"rec_type"`
	IsActive         bool             `db:"is_active"`
	CreatedAt        time.Time        `db:"created_at"`
}
