package rest

import (
	"time"

	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/shopspring/decimal"
)

type registerUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createPortfolioRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type positionRequest struct {
	Symbol string          `json:"symbol"`
	Shares decimal.Decimal `json:"shares"`
	Price  decimal.Decimal `json:"price"`
}

type cashRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Direction string          `json:"direction"`
}

type watchlistRequest struct {
	PortfolioID int64  `json:"portfolioId"`
	Symbol      string `json:"symbol"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type removedResponse struct {
	Removed bool `json:"removed"`
}

type cashResponse struct {
	CashBalance decimal.Decimal `json:"cashBalance"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type userResponse struct {
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(user model.User) userResponse {
	return userResponse{
		UserID:    user.UserID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}
}

type portfolioResponse struct {
	PortfolioID int64           `json:"portfolioId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	CashBalance decimal.Decimal `json:"cashBalance"`
	IsDefault   bool            `json:"isDefault"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func toPortfolioResponse(portfolio model.Portfolio) portfolioResponse {
	return portfolioResponse{
		PortfolioID: portfolio.PortfolioID,
		Name:        portfolio.Name,
		Description: portfolio.Description,
		CashBalance: portfolio.CashBalance,
		IsDefault:   portfolio.IsDefault,
		CreatedAt:   portfolio.CreatedAt,
	}
}

func toPortfolioResponses(portfolios []model.Portfolio) []portfolioResponse {
	res := make([]portfolioResponse, 0, len(portfolios))
	for _, portfolio := range portfolios {
		res = append(res, toPortfolioResponse(portfolio))
	}
	return res
}

type positionResponse struct {
	PositionID  int64           `json:"positionId"`
	PortfolioID int64           `json:"portfolioId"`
	Symbol      string          `json:"symbol"`
	Shares      decimal.Decimal `json:"shares"`
	AvgPrice    decimal.Decimal `json:"avgPrice"`
	AddedAt     time.Time       `json:"addedAt"`
}

func toPositionResponse(position model.Position) positionResponse {
	return positionResponse{
		PositionID:  position.PositionID,
		PortfolioID: position.PortfolioID,
		Symbol:      position.Symbol,
		Shares:      position.Shares,
		AvgPrice:    position.AvgPrice,
		AddedAt:     position.AddedAt,
	}
}

type stockResponse struct {
	Symbol        string           `json:"symbol"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	Change        decimal.Decimal  `json:"change"`
	ChangePercent decimal.Decimal  `json:"changePercent"`
	Volume        int64            `json:"volume"`
	MarketCap     *decimal.Decimal `json:"marketCap,omitempty"`
	PE            *decimal.Decimal `json:"pe,omitempty"`
	LastUpdated   time.Time        `json:"lastUpdated"`
}

func toStockResponse(stock model.Stock) stockResponse {
	return stockResponse{
		Symbol:        stock.Symbol,
		Name:          stock.Name,
		Price:         stock.Price,
		Change:        stock.Change,
		ChangePercent: stock.ChangePercent,
		Volume:        stock.Volume,
		MarketCap:     stock.MarketCap,
		PE:            stock.PE,
		LastUpdated:   stock.LastUpdated,
	}
}

func toStockResponses(stocks []model.Stock) []stockResponse {
	res := make([]stockResponse, 0, len(stocks))
	for _, stock := range stocks {
		res = append(res, toStockResponse(stock))
	}
	return res
}

type holdingResponse struct {
	positionResponse
	Name             string          `json:"name"`
	Price            decimal.Decimal `json:"price"`
	Change           decimal.Decimal `json:"change"`
	ChangePercent    decimal.Decimal `json:"changePercent"`
	CurrentValue     decimal.Decimal `json:"currentValue"`
	CostBasis        decimal.Decimal `json:"costBasis"`
	GainLoss         decimal.Decimal `json:"gainLoss"`
	GainLossPercent  decimal.Decimal `json:"gainLossPercent"`
	PortfolioPercent decimal.Decimal `json:"portfolioPercent"`
}

func toHoldingResponses(holdings []model.Holding) []holdingResponse {
	res := make([]holdingResponse, 0, len(holdings))
	for _, holding := range holdings {
		res = append(res, holdingResponse{
			positionResponse: toPositionResponse(holding.Position),
			Name:             holding.Stock.Name,
			Price:            holding.Stock.Price,
			Change:           holding.Stock.Change,
			ChangePercent:    holding.Stock.ChangePercent,
			CurrentValue:     holding.CurrentValue,
			CostBasis:        holding.CostBasis,
			GainLoss:         holding.GainLoss,
			GainLossPercent:  holding.GainLossPercent,
			PortfolioPercent: holding.PortfolioPercent,
		})
	}
	return res
}

type summaryResponse struct {
	TotalValue       decimal.Decimal `json:"totalValue"`
	TotalCost        decimal.Decimal `json:"totalCost"`
	TotalGain        decimal.Decimal `json:"totalGain"`
	TotalGainPercent decimal.Decimal `json:"totalGainPercent"`
	DayChange        decimal.Decimal `json:"dayChange"`
	DayChangePercent decimal.Decimal `json:"dayChangePercent"`
	BuyingPower      decimal.Decimal `json:"buyingPower"`
}

func toSummaryResponse(summary model.PortfolioSummary) summaryResponse {
	return summaryResponse{
		TotalValue:       summary.TotalValue,
		TotalCost:        summary.TotalCost,
		TotalGain:        summary.TotalGain,
		TotalGainPercent: summary.TotalGainPercent,
		DayChange:        summary.DayChange,
		DayChangePercent: summary.DayChangePercent,
		BuyingPower:      summary.BuyingPower,
	}
}

type marketIndexResponse struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	LastUpdated   time.Time       `json:"lastUpdated"`
}

func toMarketIndexResponses(indices []model.MarketIndex) []marketIndexResponse {
	res := make([]marketIndexResponse, 0, len(indices))
	for _, index := range indices {
		res = append(res, marketIndexResponse{
			Symbol:        index.Symbol,
			Name:          index.Name,
			Price:         index.Price,
			Change:        index.Change,
			ChangePercent: index.ChangePercent,
			LastUpdated:   index.LastUpdated,
		})
	}
	return res
}

type recommendationResponse struct {
	RecommendationID int64            `json:"recommendationId"`
	Symbol           string           `json:"symbol"`
	Action           string           `json:"action"`
	Confidence       string           `json:"confidence"`
	Reason           string           `json:"reason"`
	TargetPrice      *decimal.Decimal `json:"targetPrice,omitempty"`
	Allocation       *decimal.Decimal `json:"allocation,omitempty"`
	Type             string           `json:"type"`
	CreatedAt        time.Time        `json:"createdAt"`
}

func toRecommendationResponse(rec model.Recommendation) recommendationResponse {
	return recommendationResponse{
		RecommendationID: rec.RecommendationID,
		Symbol:           rec.Symbol,
		Action:           string(rec.Action),
		Confidence:       string(rec.Confidence),
		Reason:           rec.Reason,
		TargetPrice:      rec.TargetPrice,
		Allocation:       rec.Allocation,
		Type:             string(rec.Type),
		CreatedAt:        rec.CreatedAt,
	}
}

func toRecommendationResponses(recs []model.Recommendation) []recommendationResponse {
	res := make([]recommendationResponse, 0, len(recs))
	for _, rec := range recs {
		res = append(res, toRecommendationResponse(rec))
	}
	return res
}

type watchlistStockResponse struct {
	stockResponse
	Recommendation *recommendationResponse `json:"recommendation,omitempty"`
}

func toWatchlistStockResponses(stocks []model.StockWithRecommendation) []watchlistStockResponse {
	res := make([]watchlistStockResponse, 0, len(stocks))
	for _, stock := range stocks {
		item := watchlistStockResponse{stockResponse: toStockResponse(stock.Stock)}
		if stock.Recommendation != nil {
			rec := toRecommendationResponse(*stock.Recommendation)
			item.Recommendation = &rec
		}
		res = append(res, item)
	}
	return res
}
