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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// GetPositionForUpdate locks the (portfolio, symbol) row so a weighted-average
// merge cannot race a concurrent buy: the losing writer blocks until the first
// transaction commits and then sees the merged row.
func (r *Postgres) GetPositionForUpdate(ctx context.Context, portfolioID int64, symbol string) (position model.Position, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetPositionForUpdate"
	query := `
		SELECT position_id, portfolio_id, symbol, shares, avg_price, added_at
		FROM positions
		WHERE portfolio_id = $1
		AND symbol = $2
		FOR UPDATE
		`

	slog.Debug("GetPositionForUpdate start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("GetPositionForUpdate failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPositionForUpdate completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbPosition := dbModel.Position{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, portfolioID, symbol).StructScan(&dbPosition)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Position{}, repository.ErrNotFound
		}
		return model.Position{}, err
	}

	return dbConverter.ConvertPosition(dbPosition), nil
}

func (r *Postgres) InsertPosition(ctx context.Context, portfolioID int64, symbol string, shares, avgPrice decimal.Decimal) (position model.Position, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.InsertPosition"
	query := `
		INSERT INTO positions(portfolio_id, symbol, shares, avg_price)
		VALUES($1, $2, $3, $4)
		RETURNING position_id, portfolio_id, symbol, shares, avg_price, added_at
		`

	slog.Debug("InsertPosition start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertPosition failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertPosition completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbPosition := dbModel.Position{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, portfolioID, symbol, shares, avgPrice).StructScan(&dbPosition)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return model.Position{}, repository.ErrAlreadyExists
			}
		}
		return model.Position{}, err
	}

	return dbConverter.ConvertPosition(dbPosition), nil
}

func (r *Postgres) UpdatePosition(ctx context.Context, portfolioID int64, symbol string, shares, avgPrice decimal.Decimal) (position model.Position, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.UpdatePosition"
	query := `
		UPDATE positions
		SET shares = $1, avg_price = $2
		WHERE portfolio_id = $3
		AND symbol = $4
		RETURNING position_id, portfolio_id, symbol, shares, avg_price, added_at
		`

	slog.Debug("UpdatePosition start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("UpdatePosition failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdatePosition completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbPosition := dbModel.Position{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, shares, avgPrice, portfolioID, symbol).StructScan(&dbPosition)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Position{}, repository.ErrNotFound
		}
		return model.Position{}, err
	}

	return dbConverter.ConvertPosition(dbPosition), nil
}

func (r *Postgres) DeletePosition(ctx context.Context, portfolioID int64, symbol string) (deleted bool, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.DeletePosition"
	query := `
		DELETE FROM positions
		WHERE portfolio_id = $1
		AND symbol = $2
		`

	slog.Debug("DeletePosition start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("DeletePosition failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeletePosition completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, portfolioID, symbol)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *Postgres) getPositions(ctx context.Context, query string, arg int64) (positions []model.Position, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.getPositions"

	slog.Debug("getPositions start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("getPositions failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("getPositions completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbPosition dbModel.Position
		err = rows.StructScan(&dbPosition)
		if err != nil {
			return nil, err
		}
		positions = append(positions, dbConverter.ConvertPosition(dbPosition))
	}

	return positions, nil
}

func (r *Postgres) GetPositionsByPortfolio(ctx context.Context, portfolioID int64) ([]model.Position, error) {
	query := `
		SELECT position_id, portfolio_id, symbol, shares, avg_price, added_at
		FROM positions
		WHERE portfolio_id = $1
		ORDER BY symbol
		`

	return r.getPositions(ctx, query, portfolioID)
}

func (r *Postgres) GetPositionsByUser(ctx context.Context, userID int64) ([]model.Position, error) {
	query := `
		SELECT p.position_id, p.portfolio_id, p.symbol, p.shares, p.avg_price, p.added_at
		FROM positions p
		JOIN portfolios USING(portfolio_id)
		WHERE user_id = $1
		ORDER BY p.symbol
		`

	return r.getPositions(ctx, query, userID)
}

// GetHeldSymbols returns every distinct symbol held in any portfolio.
func (r *Postgres) GetHeldSymbols(ctx context.Context) (symbols []string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetHeldSymbols"
	query := `SELECT DISTINCT symbol FROM positions ORDER BY symbol`

	slog.Debug("GetHeldSymbols start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetHeldSymbols failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetHeldSymbols completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	err = r.txOrDb(ctx).SelectContext(ctx, &symbols, query)
	if err != nil {
		return nil, err
	}

	return symbols, nil
}
