//go:build integration

package infra

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	redisC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = redisC.Terminate(ctx) })

	uri, err := redisC.ConnectionString(ctx)
	require.NoError(t, err)

	rdb, err := NewRedis(uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisSettingsReadAndFallback(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()
	settings := NewRedisSettings(rdb)

	// Absent key falls back.
	assert.Equal(t, "22:00", settings.Get(ctx, "register:auto_close_cutoff", "22:00"))

	require.NoError(t, rdb.Set(ctx, "settings:register:auto_close_cutoff", "21:30", 0).Err())
	assert.Equal(t, "21:30", settings.Get(ctx, "register:auto_close_cutoff", "22:00"))
}

func TestRedisNotifierPublishesAndCapsRecentList(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()
	notifier := NewRedisNotifier(rdb)

	sub := rdb.Subscribe(ctx, "notifications:register")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx) // wait for the subscription to be live
	require.NoError(t, err)

	notifier.Notify(ctx, "Cash register opened by alice", "info")

	select {
	case msg := <-sub.Channel():
		var n Notification
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &n))
		assert.Equal(t, "Cash register opened by alice", n.Message)
		assert.Equal(t, "info", n.Severity)
	case <-time.After(5 * time.Second):
		t.Fatal("no notification received on channel")
	}

	// The recent list never grows past its cap.
	for i := 0; i < notificationCap+20; i++ {
		notifier.Notify(ctx, "movement recorded", "info")
	}
	length, err := rdb.LLen(ctx, "notifications:recent").Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, length, int64(notificationCap))
}
