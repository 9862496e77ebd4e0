package infra

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const settingsPrefix = "settings:"

// RedisSettings reads runtime-overridable settings from Redis, falling back
// to the supplied default when the key is absent or Redis is unreachable.
// Supervisors can change the auto-close cutoff without a redeploy:
//
//	SET settings:register:auto_close_cutoff "21:30"
type RedisSettings struct {
	rdb *redis.Client
}

func NewRedisSettings(rdb *redis.Client) *RedisSettings {
	return &RedisSettings{rdb: rdb}
}

func (s *RedisSettings) Get(ctx context.Context, key, fallback string) string {
	val, err := s.rdb.Get(ctx, settingsPrefix+key).Result()
	if err == redis.Nil {
		return fallback
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("settings: read failed, using fallback")
		return fallback
	}
	return val
}
