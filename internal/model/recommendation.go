package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type RecAction string

const (
	ActionBuy    RecAction = "BUY"
	ActionSell   RecAction = "SELL"
	ActionHold   RecAction = "HOLD"
	ActionReduce RecAction = "REDUCE"
)

type RecConfidence string

const (
	ConfidenceHigh   RecConfidence = "HIGH"
	ConfidenceMedium RecConfidence = "MEDIUM"
	ConfidenceLow    RecConfidence = "LOW"
)

type RecType string

const (
	RecTypeWatchlist RecType = "WATCHLIST"
	RecTypePortfolio RecType = "PORTFOLIO"
	RecTypeDiscovery RecType = "DISCOVERY"
)

// Recommendation is advisory metadata attached to a symbol. It never feeds
// back into valuation.
type Recommendation struct {
	RecommendationID int64
	Symbol           string
	Action           RecAction
	Confidence       RecConfidence
	Reason           string
	TargetPrice      *decimal.Decimal
	Allocation       *decimal.Decimal
	Type             RecType
	IsActive         bool
	CreatedAt        time.Time
}
