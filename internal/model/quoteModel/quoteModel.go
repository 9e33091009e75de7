package quoteModel

import "github.com/shopspring/decimal"

// Quote is a point-in-time market quote from the price source.
type Quote struct {
	Symbol        string           `json:"symbol"`
	Price         decimal.Decimal  `json:"price"`
	Change        decimal.Decimal  `json:"change"`
	ChangePercent decimal.Decimal  `json:"changePercent"`
	Volume        int64            `json:"volume"`
	MarketCap     *decimal.Decimal `json:"marketCap,omitempty"`
	PE            *decimal.Decimal `json:"pe,omitempty"`
}

// RawSnapshot mirrors the polygon snapshot response for one ticker.
type RawSnapshot struct {
	Status  string     `json:"status"`
	Results *RawTicker `json:"results"`
}

type RawTicker struct {
	Ticker    string       `json:"ticker"`
	MarketCap *float64     `json:"marketCap"`
	PERatio   *float64     `json:"peRatio"`
	LastQuote *RawLast     `json:"lastQuote"`
	Day       *RawDayAggs  `json:"day"`
}

type RawLast struct {
	Last float64 `json:"last"`
}

type RawDayAggs struct {
	Close         float64 `json:"close"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Volume        int64   `json:"volume"`
}

// RawTickerSearch mirrors the polygon reference tickers response.
type RawTickerSearch struct {
	Results []RawTickerRef `json:"results"`
}

type RawTickerRef struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

type TickerRef struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}
