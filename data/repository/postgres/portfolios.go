package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/KotFed0t/invest_assistant/data/repository"
	"github.com/KotFed0t/invest_assistant/internal/converter/dbConverter"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/internal/model/dbModel"
	"github.com/KotFed0t/invest_assistant/utils"
	"github.com/shopspring/decimal"
)

func (r *Postgres) CreatePortfolio(ctx context.Context, userID int64, name, description string, cashBalance decimal.Decimal, isDefault bool) (portfolio model.Portfolio, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.CreatePortfolio"
	query := `
		INSERT INTO portfolios(user_id, name, description, cash_balance, is_default)
		VALUES($1, $2, NULLIF($3, ''), $4, $5)
		RETURNING portfolio_id, user_id, name, description, cash_balance, is_default, created_at
		`

	slog.Debug("CreatePortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("CreatePortfolio failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("CreatePortfolio completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbPortfolio := dbModel.Portfolio{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, userID, name, description, cashBalance, isDefault).StructScan(&dbPortfolio)
	if err != nil {
		return model.Portfolio{}, err
	}

	return dbConverter.ConvertPortfolio(dbPortfolio), nil
}

func (r *Postgres) GetPortfolio(ctx context.Context, portfolioID int64) (portfolio model.Portfolio, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetPortfolio"
	query := `
		SELECT portfolio_id, user_id, name, description, cash_balance, is_default, created_at
		FROM portfolios
		WHERE portfolio_id = $1
		`

	slog.Debug("GetPortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetPortfolio failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPortfolio completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbPortfolio := dbModel.Portfolio{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, portfolioID).StructScan(&dbPortfolio)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Portfolio{}, repository.ErrNotFound
		}
		return model.Portfolio{}, err
	}

	return dbConverter.ConvertPortfolio(dbPortfolio), nil
}

func (r *Postgres) GetPortfolios(ctx context.Context, userID int64) (portfolios []model.Portfolio, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetPortfolios"
	query := `
		SELECT portfolio_id, user_id, name, description, cash_balance, is_default, created_at
		FROM portfolios
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at
		`

	slog.Debug("GetPortfolios start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetPortfolios failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPortfolios completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbPortfolio dbModel.Portfolio
		err = rows.StructScan(&dbPortfolio)
		if err != nil {
			return nil, err
		}
		portfolios = append(portfolios, dbConverter.ConvertPortfolio(dbPortfolio))
	}

	return portfolios, nil
}

func (r *Postgres) GetDefaultPortfolio(ctx context.Context, userID int64) (portfolio model.Portfolio, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetDefaultPortfolio"
	query := `
		SELECT portfolio_id, user_id, name, description, cash_balance, is_default, created_at
		FROM portfolios
		WHERE user_id = $1 AND is_default = true
		`

	slog.Debug("GetDefaultPortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetDefaultPortfolio failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetDefaultPortfolio completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbPortfolio := dbModel.Portfolio{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, userID).StructScan(&dbPortfolio)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Portfolio{}, repository.ErrNotFound
		}
		return model.Portfolio{}, err
	}

	return dbConverter.ConvertPortfolio(dbPortfolio), nil
}

// GetPortfolioForUpdate locks the portfolio row for the rest of the
// transaction. Cash adjustments read-modify-write the balance under this lock.
func (r *Postgres) GetPortfolioForUpdate(ctx context.Context, portfolioID int64) (portfolio model.Portfolio, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetPortfolioForUpdate"
	query := `
		SELECT portfolio_id, user_id, name, description, cash_balance, is_default, created_at
		FROM portfolios
		WHERE portfolio_id = $1
		FOR UPDATE
		`

	slog.Debug("GetPortfolioForUpdate start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetPortfolioForUpdate failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPortfolioForUpdate completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbPortfolio := dbModel.Portfolio{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, portfolioID).StructScan(&dbPortfolio)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Portfolio{}, repository.ErrNotFound
		}
		return model.Portfolio{}, err
	}

	return dbConverter.ConvertPortfolio(dbPortfolio), nil
}

func (r *Postgres) UpdatePortfolioCashBalance(ctx context.Context, portfolioID int64, newBalance decimal.Decimal) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.UpdatePortfolioCashBalance"
	query := `UPDATE portfolios SET cash_balance = $1 WHERE portfolio_id = $2`

	slog.Debug("UpdatePortfolioCashBalance start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpdatePortfolioCashBalance failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdatePortfolioCashBalance completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, newBalance, portfolioID)
	if err != nil {
		return err
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
