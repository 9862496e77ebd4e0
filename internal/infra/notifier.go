package infra

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	notificationChannel = "notifications:register"
	notificationList    = "notifications:recent"
	notificationCap     = 100
)

// Notification is the JSON envelope published to the side-channel.
type Notification struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
	At       string `json:"at"` // ISO 8601
}

// RedisNotifier publishes user-visible status messages on a pub/sub channel
// and keeps a capped recent list so UIs can catch up after a reconnect.
// Delivery is fire-and-forget: failures are logged, never propagated.
type RedisNotifier struct {
	rdb *redis.Client
}

func NewRedisNotifier(rdb *redis.Client) *RedisNotifier {
	return &RedisNotifier{rdb: rdb}
}

func (n *RedisNotifier) Notify(ctx context.Context, message, severity string) {
	entry := Notification{
		Message:  message,
		Severity: severity,
		At:       time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Msg("notifier: marshal failed")
		return
	}

	pipe := n.rdb.Pipeline()
	pipe.Publish(ctx, notificationChannel, data)
	pipe.LPush(ctx, notificationList, data)
	pipe.LTrim(ctx, notificationList, 0, notificationCap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Str("severity", severity).Msg("notifier: redis delivery failed")
	}

	log.Info().Str("severity", severity).Msg(message)
}
