package investService

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/invest_assistant/data/repository"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/internal/service"
	"github.com/KotFed0t/invest_assistant/utils"
)

// AddToWatchlist tracks a symbol for a user. The symbol is resolved through
// the catalog first so the watchlist never references unknown tickers.
func (s *InvestService) AddToWatchlist(ctx context.Context, userID, portfolioID int64, symbol string) (item model.WatchlistItem, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.AddToWatchlist"

	slog.Debug("AddToWatchlist start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID), slog.String("symbol", symbol))
	defer func() {
		slog.Debug("AddToWatchlist finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID), slog.String("symbol", symbol))
	}()

	stock, err := s.resolveStock(ctx, symbol)
	if err != nil {
		return model.WatchlistItem{}, err
	}

	item, err = s.repo.InsertWatchlistItem(ctx, userID, portfolioID, stock.Symbol)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return model.WatchlistItem{}, service.ErrAlreadyExists
		}
		slog.Error("got error from repo.InsertWatchlistItem", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.WatchlistItem{}, err
	}

	return item, nil
}

func (s *InvestService) RemoveFromWatchlist(ctx context.Context, userID int64, symbol string) (removed bool, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.RemoveFromWatchlist"

	slog.Debug("RemoveFromWatchlist start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID), slog.String("symbol", symbol))
	defer func() {
		slog.Debug("RemoveFromWatchlist finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID), slog.String("symbol", symbol))
	}()

	removed, err = s.repo.DeleteWatchlistItem(ctx, userID, normalizeSymbol(symbol))
	if err != nil {
		slog.Error("got error from repo.DeleteWatchlistItem", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return false, err
	}

	return removed, nil
}

// GetWatchlist returns watched snapshots annotated with the latest active
// recommendation per symbol. A failing recommendation lookup leaves the
// annotation empty rather than failing the list.
func (s *InvestService) GetWatchlist(ctx context.Context, userID int64, portfolioID *int64) (stocks []model.StockWithRecommendation, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.GetWatchlist"

	slog.Debug("GetWatchlist start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GetWatchlist finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	watched, err := s.repo.GetWatchlistStocks(ctx, userID, portfolioID)
	if err != nil {
		slog.Error("got error from repo.GetWatchlistStocks", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	stocks = make([]model.StockWithRecommendation, 0, len(watched))
	for _, stock := range watched {
		annotated := model.StockWithRecommendation{Stock: stock}

		rec, err := s.repo.GetActiveRecommendationBySymbol(ctx, stock.Symbol)
		if err == nil {
			annotated.Recommendation = &rec
		} else if !errors.Is(err, repository.ErrNotFound) {
			slog.Warn("can't load recommendation for watchlist symbol", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", stock.Symbol), slog.String("err", err.Error()))
		}

		stocks = append(stocks, annotated)
	}

	return stocks, nil
}
