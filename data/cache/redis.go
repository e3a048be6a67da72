package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/qrenard/patrimoine/config"
	"github.com/qrenard/patrimoine/internal/model/quoteModel"
	"github.com/qrenard/patrimoine/utils"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const fxRateKey = "fx:usd_eur"

var ErrNotFound = errors.New("error not found in cache")

type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func quoteKey(symbol string) string {
	return "quote:" + symbol
}

func (r *RedisCache) SetQuote(ctx context.Context, quote quoteModel.Quote) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetQuote start", slog.String("rqID", rqID), slog.String("symbol", quote.Symbol))

	quoteJson, err := json.Marshal(quote)
	if err != nil {
		slog.Error(
			"can't marshall quote in SetQuote",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.Any("quote", quote),
		)
		return errors.New("can't marshall quote")
	}

	_, err = r.redis.Set(ctx, quoteKey(quote.Symbol), quoteJson, r.cfg.Cache.QuotesExpiration).Result()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("symbol", quote.Symbol))
		return err
	}

	slog.Debug("SetQuote completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetQuote(ctx context.Context, symbol string) (quoteModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetQuote start", slog.String("rqID", rqID), slog.String("symbol", symbol))

	res, err := r.redis.Get(ctx, quoteKey(symbol)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return quoteModel.Quote{}, ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("symbol", symbol))
		return quoteModel.Quote{}, err
	}

	quote := quoteModel.Quote{}
	err = json.Unmarshal([]byte(res), &quote)
	if err != nil {
		slog.Error(
			"can't unmarshall quote in GetQuote",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return quoteModel.Quote{}, errors.New("can't unmarshall quote")
	}

	slog.Debug("GetQuote completed", slog.String("rqID", rqID))

	return quote, nil
}

func (r *RedisCache) SetFxRate(ctx context.Context, rate decimal.Decimal) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetFxRate start", slog.String("rqID", rqID))

	_, err := r.redis.Set(ctx, fxRateKey, rate.String(), r.cfg.Cache.QuotesExpiration).Result()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetFxRate completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetFxRate(ctx context.Context) (decimal.Decimal, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetFxRate start", slog.String("rqID", rqID))

	res, err := r.redis.Get(ctx, fxRateKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return decimal.Decimal{}, ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return decimal.Decimal{}, err
	}

	rate, err := decimal.NewFromString(res)
	if err != nil {
		slog.Error("can't parse fx rate from cache", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("resultFromRedis", res))
		return decimal.Decimal{}, errors.New("can't parse fx rate")
	}

	slog.Debug("GetFxRate completed", slog.String("rqID", rqID))

	return rate, nil
}
