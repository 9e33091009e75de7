package aiModel

// StockAnalysis is the advisor's verdict for one symbol, parsed from the
// model's JSON output.
type StockAnalysis struct {
	Symbol      string   `json:"symbol"`
	Action      string   `json:"action"`
	Confidence  string   `json:"confidence"`
	Reason      string   `json:"reason"`
	TargetPrice *float64 `json:"targetPrice,omitempty"`
	Allocation  *float64 `json:"allocation,omitempty"`
}

// HoldingBrief is the compact portfolio line handed to the advisor prompt.
type HoldingBrief struct {
	Symbol          string `json:"symbol"`
	Shares          string `json:"shares"`
	AvgPrice        string `json:"avgPrice"`
	CurrentPrice    string `json:"currentPrice"`
	GainLossPercent string `json:"gainLossPercent"`
	PortfolioWeight string `json:"portfolioWeight"`
}
