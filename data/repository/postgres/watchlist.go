package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/invest_assistant/data/repository"
	"github.com/KotFed0t/invest_assistant/internal/converter/dbConverter"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/internal/model/dbModel"
	"github.com/KotFed0t/invest_assistant/utils"
	"github.com/jackc/pgx/v5/pgconn"
)

func (r *Postgres) InsertWatchlistItem(ctx context.Context, userID, portfolioID int64, symbol string) (item model.WatchlistItem, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.InsertWatchlistItem"
	query := `
		INSERT INTO watchlist(user_id, portfolio_id, symbol)
		VALUES($1, $2, $3)
		RETURNING watchlist_id, user_id, portfolio_id, symbol, added_at
		`

	slog.Debug("InsertWatchlistItem start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertWatchlistItem failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertWatchlistItem completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbItem := dbModel.WatchlistItem{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, userID, portfolioID, symbol).StructScan(&dbItem)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return model.WatchlistItem{}, repository.ErrAlreadyExists
			}
		}
		return model.WatchlistItem{}, err
	}

	return dbConverter.ConvertWatchlistItem(dbItem), nil
}

func (r *Postgres) DeleteWatchlistItem(ctx context.Context, userID int64, symbol string) (deleted bool, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.DeleteWatchlistItem"
	query := `
		DELETE FROM watchlist
		WHERE user_id = $1
		AND symbol = $2
		`

	slog.Debug("DeleteWatchlistItem start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("DeleteWatchlistItem failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeleteWatchlistItem completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, userID, symbol)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *Postgres) GetWatchlistStocks(ctx context.Context, userID int64, portfolioID *int64) (stocks []model.Stock, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetWatchlistStocks"
	query := `
		SELECT s.symbol, s.name, s.price, s.change, s.change_percent, s.volume, s.market_cap, s.pe, s.last_updated
		FROM watchlist w
		JOIN stocks s USING(symbol)
		WHERE w.user_id = $1
		AND ($2::bigint IS NULL OR w.portfolio_id = $2)
		ORDER BY s.symbol
		`

	slog.Debug("GetWatchlistStocks start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetWatchlistStocks failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetWatchlistStocks completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, userID, portfolioID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbStock dbModel.Stock
		err = rows.StructScan(&dbStock)
		if err != nil {
			return nil, err
		}
		stocks = append(stocks, dbConverter.ConvertStock(dbStock))
	}

	return stocks, nil
}

// GetWatchedSymbols returns every distinct symbol on any watchlist.
func (r *Postgres) GetWatchedSymbols(ctx context.Context) (symbols []string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetWatchedSymbols"
	query := `SELECT DISTINCT symbol FROM watchlist ORDER BY symbol`

	slog.Debug("GetWatchedSymbols start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetWatchedSymbols failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetWatchedSymbols completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	err = r.txOrDb(ctx).SelectContext(ctx, &symbols, query)
	if err != nil {
		return nil, err
	}

	return symbols, nil
}
