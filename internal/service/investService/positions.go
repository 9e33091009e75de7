package investService

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/invest_assistant/data/repository"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/internal/service"
	"github.com/KotFed0t/invest_assistant/utils"
	"github.com/shopspring/decimal"
)

// AddPosition buys into a portfolio. An existing holding of the same symbol
// is merged with a weighted-average price; the row lock taken inside the
// transaction makes concurrent buys serialize instead of losing updates.
func (s *InvestService) AddPosition(ctx context.Context, portfolioID int64, symbol string, shares, price decimal.Decimal) (position model.Position, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.AddPosition"

	slog.Debug("AddPosition start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID), slog.String("symbol", symbol))
	defer func() {
		slog.Debug("AddPosition finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID), slog.String("symbol", symbol))
	}()

	if !shares.IsPositive() || !price.IsPositive() {
		return model.Position{}, service.ErrInvalidPositionInput
	}

	stock, err := s.resolveStock(ctx, symbol)
	if err != nil {
		return model.Position{}, err
	}

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetPositionForUpdate(ctx, portfolioID, stock.Symbol)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				position, err = s.repo.InsertPosition(ctx, portfolioID, stock.Symbol, shares, price)
				return err
			}
			return err
		}

		newShares := existing.Shares.Add(shares)
		newAvg := existing.Shares.Mul(existing.AvgPrice).Add(shares.Mul(price)).Div(newShares)

		position, err = s.repo.UpdatePosition(ctx, portfolioID, stock.Symbol, newShares, newAvg)
		return err
	})
	if err != nil {
		slog.Error("got error from repo in AddPosition", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Position{}, err
	}

	return position, nil
}

// UpdatePosition sets shares and average price to absolute values. A missing
// row falls back to creating one, so the operation behaves as an upsert.
func (s *InvestService) UpdatePosition(ctx context.Context, portfolioID int64, symbol string, shares, avgPrice decimal.Decimal) (position model.Position, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.UpdatePosition"

	slog.Debug("UpdatePosition start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID), slog.String("symbol", symbol))
	defer func() {
		slog.Debug("UpdatePosition finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID), slog.String("symbol", symbol))
	}()

	if !shares.IsPositive() || !avgPrice.IsPositive() {
		return model.Position{}, service.ErrInvalidPositionInput
	}

	stock, err := s.resolveStock(ctx, symbol)
	if err != nil {
		return model.Position{}, err
	}

	position, err = s.repo.UpdatePosition(ctx, portfolioID, stock.Symbol, shares, avgPrice)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.Info("position absent on update, creating it", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", stock.Symbol))
			position, err = s.repo.InsertPosition(ctx, portfolioID, stock.Symbol, shares, avgPrice)
		}
		if err != nil {
			slog.Error("got error from repo in UpdatePosition", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return model.Position{}, err
		}
	}

	return position, nil
}

// RemovePosition closes a holding entirely. Removing an absent row reports
// false, never an error.
func (s *InvestService) RemovePosition(ctx context.Context, portfolioID int64, symbol string) (removed bool, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.RemovePosition"

	slog.Debug("RemovePosition start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID), slog.String("symbol", symbol))
	defer func() {
		slog.Debug("RemovePosition finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID), slog.String("symbol", symbol))
	}()

	removed, err = s.repo.DeletePosition(ctx, portfolioID, normalizeSymbol(symbol))
	if err != nil {
		slog.Error("got error from repo.DeletePosition", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return false, err
	}

	return removed, nil
}

// snapshotsFor loads catalog snapshots for the symbols of the given positions.
func (s *InvestService) snapshotsFor(ctx context.Context, positions []model.Position) (map[string]model.Stock, error) {
	if len(positions) == 0 {
		return map[string]model.Stock{}, nil
	}

	symbols := make([]string, 0, len(positions))
	for _, position := range positions {
		symbols = append(symbols, position.Symbol)
	}

	return s.repo.GetStocksBySymbols(ctx, symbols)
}

// GetHoldings returns a portfolio's positions with valuation metrics.
func (s *InvestService) GetHoldings(ctx context.Context, portfolioID int64) (holdings []model.Holding, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.GetHoldings"

	slog.Debug("GetHoldings start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	defer func() {
		slog.Debug("GetHoldings finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	}()

	positions, err := s.repo.GetPositionsByPortfolio(ctx, portfolioID)
	if err != nil {
		slog.Error("got error from repo.GetPositionsByPortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	snapshots, err := s.snapshotsFor(ctx, positions)
	if err != nil {
		slog.Error("got error from repo.GetStocksBySymbols", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return valueHoldings(ctx, positions, snapshots), nil
}

// GetUserHoldings values the given portfolio, or the user's default
// portfolio when none is supplied.
func (s *InvestService) GetUserHoldings(ctx context.Context, userID int64, portfolioID *int64) ([]model.Holding, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.GetUserHoldings"

	slog.Debug("GetUserHoldings start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GetUserHoldings finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	if portfolioID != nil {
		return s.GetHoldings(ctx, *portfolioID)
	}

	portfolio, err := s.repo.GetDefaultPortfolio(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, service.ErrNotFound
		}
		slog.Error("got error from repo.GetDefaultPortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return s.GetHoldings(ctx, portfolio.PortfolioID)
}

// GetPortfolioSummary aggregates a single portfolio, or the user's whole book
// when portfolioID is nil. Without a portfolio there is no cash balance to
// report, so buying power falls back to the default.
func (s *InvestService) GetPortfolioSummary(ctx context.Context, userID int64, portfolioID *int64) (summary model.PortfolioSummary, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.GetPortfolioSummary"

	slog.Debug("GetPortfolioSummary start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GetPortfolioSummary finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	var positions []model.Position
	buyingPower := defaultCashBalance

	if portfolioID != nil {
		portfolio, err := s.GetPortfolio(ctx, *portfolioID)
		if err != nil {
			return model.PortfolioSummary{}, err
		}
		buyingPower = portfolio.CashBalance

		positions, err = s.repo.GetPositionsByPortfolio(ctx, *portfolioID)
		if err != nil {
			slog.Error("got error from repo.GetPositionsByPortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return model.PortfolioSummary{}, err
		}
	} else {
		positions, err = s.repo.GetPositionsByUser(ctx, userID)
		if err != nil {
			slog.Error("got error from repo.GetPositionsByUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return model.PortfolioSummary{}, err
		}
	}

	snapshots, err := s.snapshotsFor(ctx, positions)
	if err != nil {
		slog.Error("got error from repo.GetStocksBySymbols", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioSummary{}, err
	}

	return summarize(valueHoldings(ctx, positions, snapshots), buyingPower), nil
}
