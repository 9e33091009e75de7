package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/invest_assistant/config"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/utils"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("session not found")

type RedisSession struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisSession(redisClient *redis.Client, cfg *config.Config) *RedisSession {
	return &RedisSession{redis: redisClient, cfg: cfg}
}

func chatKey(userID int64) string {
	return fmt.Sprintf("chat:%d", userID)
}

func (r *RedisSession) GetChatSession(ctx context.Context, userID int64) (model.ChatSession, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetChatSession start", slog.String("rqID", rqID))

	res, err := r.redis.Get(ctx, chatKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.ChatSession{}, ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return model.ChatSession{}, err
	}

	session := model.ChatSession{}
	err = json.Unmarshal([]byte(res), &session)
	if err != nil {
		slog.Error(
			"can't unmarshall session in GetChatSession",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return model.ChatSession{}, errors.New("can't unmarshall session")
	}

	slog.Debug("GetChatSession finished", slog.String("rqID", rqID))

	return session, nil
}

func (r *RedisSession) SetChatSession(ctx context.Context, userID int64, session model.ChatSession) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetChatSession start", slog.String("rqID", rqID))

	sessionJson, err := json.Marshal(session)
	if err != nil {
		slog.Error("can't marshall session in SetChatSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return errors.New("can't marshall session")
	}

	_, err = r.redis.Set(ctx, chatKey(userID), sessionJson, r.cfg.SessionExpiration).Result()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetChatSession finished", slog.String("rqID", rqID))

	return nil
}

func (r *RedisSession) ClearChatSession(ctx context.Context, userID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("ClearChatSession start", slog.String("rqID", rqID))

	_, err := r.redis.Del(ctx, chatKey(userID)).Result()
	if err != nil {
		slog.Error("failed on redis.Del", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("ClearChatSession finished", slog.String("rqID", rqID))

	return nil
}
