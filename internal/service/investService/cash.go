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

// AdjustCash deposits to or withdraws from a portfolio's cash balance. The
// portfolio row stays locked for the whole read-modify-write, and a withdraw
// past the balance leaves it untouched.
func (s *InvestService) AdjustCash(ctx context.Context, portfolioID int64, amount decimal.Decimal, direction model.CashDirection) (newBalance decimal.Decimal, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.AdjustCash"

	slog.Debug("AdjustCash start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID), slog.String("direction", string(direction)))
	defer func() {
		slog.Debug("AdjustCash finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	}()

	if !amount.IsPositive() {
		return decimal.Zero, service.ErrInvalidCashAmount
	}

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		portfolio, err := s.repo.GetPortfolioForUpdate(ctx, portfolioID)
		if err != nil {
			return err
		}

		switch direction {
		case model.CashWithdraw:
			newBalance = portfolio.CashBalance.Sub(amount)
			if newBalance.IsNegative() {
				return service.ErrInsufficientFunds
			}
		default:
			newBalance = portfolio.CashBalance.Add(amount)
		}

		return s.repo.UpdatePortfolioCashBalance(ctx, portfolioID, newBalance)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return decimal.Zero, service.ErrNotFound
		}
		if !errors.Is(err, service.ErrInsufficientFunds) {
			slog.Error("got error from repo in AdjustCash", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
		return decimal.Zero, err
	}

	return newBalance, nil
}
