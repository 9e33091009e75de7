package investService

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/invest_assistant/utils"
)

// CreatePortfolioReport renders a portfolio's holdings and summary as a
// spreadsheet download.
func (s *InvestService) CreatePortfolioReport(ctx context.Context, userID, portfolioID int64) (file []byte, filename string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestService.CreatePortfolioReport"

	slog.Debug("CreatePortfolioReport start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	defer func() {
		slog.Debug("CreatePortfolioReport finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	}()

	portfolio, err := s.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, "", err
	}

	holdings, err := s.GetHoldings(ctx, portfolioID)
	if err != nil {
		return nil, "", err
	}

	summary, err := s.GetPortfolioSummary(ctx, userID, &portfolioID)
	if err != nil {
		return nil, "", err
	}

	file, filename, err = s.reportGen.CreatePortfolioReport(ctx, portfolio, holdings, summary)
	if err != nil {
		slog.Error("got error from reportGen.CreatePortfolioReport", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	return file, filename, nil
}
