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

func (r *Postgres) InsertRecommendation(ctx context.Context, rec model.Recommendation) (inserted model.Recommendation, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.InsertRecommendation"
	query := `
		INSERT INTO recommendations(symbol, action, confidence, reason, target_price, allocation, rec_type, is_active)
		VALUES($1, $2, $3, $4, $5, $6, $7, true)
		RETURNING recommendation_id, symbol, action, confidence, reason, target_price, allocation, rec_type, is_active, created_at
		`

	slog.Debug("InsertRecommendation start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertRecommendation failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertRecommendation completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbRec := dbModel.Recommendation{}
	err = r.txOrDb(ctx).QueryRowxContext(
		ctx,
		query,
		rec.Symbol,
		string(rec.Action),
		string(rec.Confidence),
		rec.Reason,
		rec.TargetPrice,
		rec.Allocation,
		string(rec.Type),
	).StructScan(&dbRec)
	if err != nil {
		return model.Recommendation{}, err
	}

	return dbConverter.ConvertRecommendation(dbRec), nil
}

func (r *Postgres) GetActiveRecommendations(ctx context.Context) (recs []model.Recommendation, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetActiveRecommendations"
	query := `
		SELECT recommendation_id, symbol, action, confidence, reason, target_price, allocation, rec_type, is_active, created_at
		FROM recommendations
		WHERE is_active = true
		ORDER BY created_at DESC
		`

	slog.Debug("GetActiveRecommendations start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetActiveRecommendations failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetActiveRecommendations completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbRec dbModel.Recommendation
		err = rows.StructScan(&dbRec)
		if err != nil {
			return nil, err
		}
		recs = append(recs, dbConverter.ConvertRecommendation(dbRec))
	}

	return recs, nil
}

// GetActiveRecommendationBySymbol returns the most recently created active
// recommendation for one symbol.
func (r *Postgres) GetActiveRecommendationBySymbol(ctx context.Context, symbol string) (rec model.Recommendation, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetActiveRecommendationBySymbol"
	query := `
		SELECT recommendation_id, symbol, action, confidence, reason, target_price, allocation, rec_type, is_active, created_at
		FROM recommendations
		WHERE symbol = $1
		AND is_active = true
		ORDER BY created_at DESC
		LIMIT 1
		`

	slog.Debug("GetActiveRecommendationBySymbol start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("GetActiveRecommendationBySymbol failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetActiveRecommendationBySymbol completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbRec := dbModel.Recommendation{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, symbol).StructScan(&dbRec)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Recommendation{}, repository.ErrNotFound
		}
		return model.Recommendation{}, err
	}

	return dbConverter.ConvertRecommendation(dbRec), nil
}

func (r *Postgres) DeactivateRecommendations(ctx context.Context) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.DeactivateRecommendations"
	query := `UPDATE recommendations SET is_active = false WHERE is_active = true`

	slog.Debug("DeactivateRecommendations start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("DeactivateRecommendations failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeactivateRecommendations completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query)
	if err != nil {
		return err
	}

	return nil
}
