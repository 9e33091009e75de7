package investService

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/internal/model/quoteModel"
	"github.com/KotFed0t/invest_assistant/utils"
)

// marketIndexNames maps the tracked index ETFs to their display names.
var marketIndexNames = map[string]string{
	"SPY": "S&P 500",
	"QQQ": "NASDAQ",
	"DIA": "Dow Jones",
}

// RefreshStockPrices re-quotes every catalog symbol. Symbols the source
// fails on keep their stale snapshot until the next run.
func (s *InvestService) RefreshStockPrices(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.RefreshStockPrices"

	slog.Debug("RefreshStockPrices start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("RefreshStockPrices finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	stocks, err := s.repo.GetStocks(ctx)
	if err != nil {
		slog.Error("got error from repo.GetStocks", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if len(stocks) == 0 {
		return nil
	}

	symbols := make([]string, 0, len(stocks))
	for _, stock := range stocks {
		symbols = append(symbols, stock.Symbol)
	}

	quotes, err := s.priceApi.GetQuotes(ctx, symbols)
	if err != nil {
		slog.Error("got error from priceApi.GetQuotes", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	fetched := make([]quoteModel.Quote, 0, len(quotes))
	for _, quote := range quotes {
		fetched = append(fetched, quote)
	}
	if err := s.cache.SetQuotes(ctx, fetched); err != nil {
		slog.Warn("can't refill quote cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	for _, stock := range stocks {
		quote, ok := quotes[stock.Symbol]
		if !ok {
			continue
		}

		stock.Price = quote.Price
		stock.Change = quote.Change
		stock.ChangePercent = quote.ChangePercent
		stock.Volume = quote.Volume
		stock.MarketCap = quote.MarketCap
		stock.PE = quote.PE

		if _, err := s.repo.UpsertStock(ctx, stock); err != nil {
			slog.Warn("can't upsert refreshed stock", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", stock.Symbol), slog.String("err", err.Error()))
		}
	}

	slog.Info("stock prices refreshed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("requested", len(symbols)), slog.Int("received", len(quotes)))

	return nil
}

// RefreshMarketData re-quotes the tracked index ETFs into market_data.
func (s *InvestService) RefreshMarketData(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.RefreshMarketData"

	slog.Debug("RefreshMarketData start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("RefreshMarketData finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	symbols := make([]string, 0, len(marketIndexNames))
	for symbol := range marketIndexNames {
		symbols = append(symbols, symbol)
	}

	quotes, err := s.priceApi.GetQuotes(ctx, symbols)
	if err != nil {
		slog.Error("got error from priceApi.GetQuotes", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	for symbol, quote := range quotes {
		index := model.MarketIndex{
			Symbol:        symbol,
			Name:          marketIndexNames[symbol],
			Price:         quote.Price,
			Change:        quote.Change,
			ChangePercent: quote.ChangePercent,
		}
		if err := s.repo.UpsertMarketIndex(ctx, index); err != nil {
			slog.Warn("can't upsert market index", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.String("err", err.Error()))
		}
	}

	return nil
}

// DeactivateRecommendations retires every active recommendation, leaving the
// next sweep to produce fresh ones.
func (s *InvestService) DeactivateRecommendations(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.DeactivateRecommendations"

	slog.Debug("DeactivateRecommendations start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("DeactivateRecommendations finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	err := s.repo.DeactivateRecommendations(ctx)
	if err != nil {
		slog.Error("got error from repo.DeactivateRecommendations", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}
