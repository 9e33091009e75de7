package postgres

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/invest_assistant/internal/converter/dbConverter"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/internal/model/dbModel"
	"github.com/KotFed0t/invest_assistant/utils"
)

func (r *Postgres) UpsertMarketIndex(ctx context.Context, index model.MarketIndex) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.UpsertMarketIndex"
	query := `
		INSERT INTO market_data(symbol, name, price, change, change_percent, last_updated)
		VALUES($1, $2, $3, $4, $5, now())
		ON CONFLICT (symbol) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			change = EXCLUDED.change,
			change_percent = EXCLUDED.change_percent,
			last_updated = now()
		`

	slog.Debug("UpsertMarketIndex start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpsertMarketIndex failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpsertMarketIndex completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, index.Symbol, index.Name, index.Price, index.Change, index.ChangePercent)
	if err != nil {
		return err
	}

	return nil
}

func (r *Postgres) GetMarketIndices(ctx context.Context) (indices []model.MarketIndex, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetMarketIndices"
	query := `
		SELECT symbol, name, price, change, change_percent, last_updated
		FROM market_data
		ORDER BY last_updated DESC
		`

	slog.Debug("GetMarketIndices start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetMarketIndices failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetMarketIndices completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbIndex dbModel.MarketIndex
		err = rows.StructScan(&dbIndex)
		if err != nil {
			return nil, err
		}
		indices = append(indices, dbConverter.ConvertMarketIndex(dbIndex))
	}

	return indices, nil
}
