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
)

func (r *Postgres) GetStock(ctx context.Context, symbol string) (stock model.Stock, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetStock"
	query := `
		SELECT symbol, name, price, change, change_percent, volume, market_cap, pe, last_updated
		FROM stocks
		WHERE symbol = $1
		`

	slog.Debug("GetStock start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("GetStock failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetStock completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbStock := dbModel.Stock{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, symbol).StructScan(&dbStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Stock{}, repository.ErrNotFound
		}
		return model.Stock{}, err
	}

	return dbConverter.ConvertStock(dbStock), nil
}

// UpsertStock creates the snapshot row or fully replaces its price-derived
// fields. The symbol must already be uppercase-normalized by the caller.
func (r *Postgres) UpsertStock(ctx context.Context, stock model.Stock) (upserted model.Stock, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.UpsertStock"
	query := `
		INSERT INTO stocks(symbol, name, price, change, change_percent, volume, market_cap, pe, last_updated)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (symbol) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			change = EXCLUDED.change,
			change_percent = EXCLUDED.change_percent,
			volume = EXCLUDED.volume,
			market_cap = EXCLUDED.market_cap,
			pe = EXCLUDED.pe,
			last_updated = now()
		RETURNING symbol, name, price, change, change_percent, volume, market_cap, pe, last_updated
		`

	slog.Debug("UpsertStock start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpsertStock failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpsertStock completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbStock := dbModel.Stock{}
	err = r.txOrDb(ctx).QueryRowxContext(
		ctx,
		query,
		stock.Symbol,
		stock.Name,
		stock.Price,
		stock.Change,
		stock.ChangePercent,
		stock.Volume,
		stock.MarketCap,
		stock.PE,
	).StructScan(&dbStock)
	if err != nil {
		return model.Stock{}, err
	}

	return dbConverter.ConvertStock(dbStock), nil
}

func (r *Postgres) GetStocks(ctx context.Context) (stocks []model.Stock, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetStocks"
	query := `
		SELECT symbol, name, price, change, change_percent, volume, market_cap, pe, last_updated
		FROM stocks
		ORDER BY symbol
		`

	slog.Debug("GetStocks start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetStocks failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetStocks completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query)
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

func (r *Postgres) GetStocksBySymbols(ctx context.Context, symbols []string) (stocks map[string]model.Stock, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetStocksBySymbols"
	query := `
		SELECT symbol, name, price, change, change_percent, volume, market_cap, pe, last_updated
		FROM stocks
		WHERE symbol = ANY($1::text[])
		`

	slog.Debug("GetStocksBySymbols start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetStocksBySymbols failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetStocksBySymbols completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, symbols)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	stocks = make(map[string]model.Stock, len(symbols))
	for rows.Next() {
		var dbStock dbModel.Stock
		err = rows.StructScan(&dbStock)
		if err != nil {
			return nil, err
		}
		stocks[dbStock.Symbol] = dbConverter.ConvertStock(dbStock)
	}

	return stocks, nil
}
