package investService

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/KotFed0t/invest_assistant/data/repository"
	"github.com/KotFed0t/invest_assistant/internal/externalApi"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/internal/model/quoteModel"
	"github.com/KotFed0t/invest_assistant/internal/service"
	"github.com/KotFed0t/invest_assistant/utils"
)

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// resolveStock returns the catalog snapshot for a symbol, fetching it through
// the quote cache and the price source on a catalog miss. A symbol the price
// source does not know yields ErrSymbolNotResolvable.
func (s *InvestService) resolveStock(ctx context.Context, symbol string) (model.Stock, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.resolveStock"
	symbol = normalizeSymbol(symbol)

	stock, err := s.repo.GetStock(ctx, symbol)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		slog.Error("got error from repo.GetStock", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Stock{}, err
	}

	quote, err := s.cache.GetQuote(ctx, symbol)
	if err != nil {
		quote, err = s.priceApi.GetQuote(ctx, symbol)
		if err != nil {
			if errors.Is(err, externalApi.ErrNotFound) {
				return model.Stock{}, service.ErrSymbolNotResolvable
			}
			slog.Error("got error from priceApi.GetQuote", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return model.Stock{}, err
		}

		if cacheErr := s.cache.SetQuotes(ctx, []quoteModel.Quote{quote}); cacheErr != nil {
			slog.Warn("can't cache quote", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", cacheErr.Error()))
		}
	}

	stock, err = s.repo.UpsertStock(ctx, s.stockFromQuote(ctx, symbol, quote))
	if err != nil {
		slog.Error("got error from repo.UpsertStock", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Stock{}, err
	}

	return stock, nil
}

// stockFromQuote builds a catalog row from a quote, resolving the company
// name best-effort through ticker search.
func (s *InvestService) stockFromQuote(ctx context.Context, symbol string, quote quoteModel.Quote) model.Stock {
	name := symbol
	refs, err := s.priceApi.SearchTickers(ctx, symbol)
	if err == nil {
		for _, ref := range refs {
			if ref.Symbol == symbol {
				name = ref.Name
				break
			}
		}
	}

	return model.Stock{
		Symbol:        symbol,
		Name:          name,
		Price:         quote.Price,
		Change:        quote.Change,
		ChangePercent: quote.ChangePercent,
		Volume:        quote.Volume,
		MarketCap:     quote.MarketCap,
		PE:            quote.PE,
	}
}

func (s *InvestService) GetStockBySymbol(ctx context.Context, symbol string) (model.Stock, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.GetStockBySymbol"

	slog.Debug("GetStockBySymbol start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	defer func() {
		slog.Debug("GetStockBySymbol finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	}()

	return s.resolveStock(ctx, symbol)
}

func (s *InvestService) GetStocks(ctx context.Context) ([]model.Stock, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.GetStocks"

	slog.Debug("GetStocks start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("GetStocks finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	stocks, err := s.repo.GetStocks(ctx)
	if err != nil {
		slog.Error("got error from repo.GetStocks", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return stocks, nil
}

func (s *InvestService) SearchStocks(ctx context.Context, query string) ([]quoteModel.TickerRef, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.SearchStocks"

	slog.Debug("SearchStocks start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		slog.Debug("SearchStocks finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	refs, err := s.priceApi.SearchTickers(ctx, strings.TrimSpace(query))
	if err != nil {
		slog.Error("got error from priceApi.SearchTickers", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return refs, nil
}

func (s *InvestService) GetMarketOverview(ctx context.Context) ([]model.MarketIndex, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.GetMarketOverview"

	slog.Debug("GetMarketOverview start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("GetMarketOverview finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	indices, err := s.repo.GetMarketIndices(ctx)
	if err != nil {
		slog.Error("got error from repo.GetMarketIndices", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return indices, nil
}
