package audit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/nexus/internal/auth/audit"
	"github.com/aussiebroadwan/nexus/internal/auth/domain"
	"github.com/aussiebroadwan/nexus/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/nexus/pkg/idx"
)

func entry(endpoint string, target *string) domain.AccessLog {
	return domain.AccessLog{
		ID:          idx.New().String(),
		Endpoint:    endpoint,
		Method:      "POST",
		RequesterID: domain.AnonymousRequester,
		TargetID:    target,
		IPAddress:   "192.0.2.4",
		UserAgent:   "sink-test",
		StatusCode:  200,
		LatencyMS:   12,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestRedisSink(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	target := "someone@example.com"
	sink := audit.RedisSink{Client: client, Stream: "test:audit"}
	require.NoError(t, sink.Append(ctx, entry("/v1/auth/login", &target)))

	msgs, err := client.XRange(ctx, "test:audit", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "/v1/auth/login", msgs[0].Values["endpoint"])
	require.Equal(t, target, msgs[0].Values["target_id"])
	require.Equal(t, "200", msgs[0].Values["status_code"])

	t.Run("default stream and trimming", func(t *testing.T) {
		trimmed := audit.RedisSink{Client: client, MaxLen: 2}
		for range 5 {
			require.NoError(t, trimmed.Append(ctx, entry("/v1/auth/refresh", nil)))
		}
		n, err := client.XLen(ctx, audit.DefaultRedisStream).Result()
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, int64(2))
		require.Less(t, n, int64(5))
	})

	t.Run("unavailable", func(t *testing.T) {
		mr.Close()
		require.Error(t, sink.Append(ctx, entry("/v1/auth/login", nil)))
	})
}

func TestBoltSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	sink, err := audit.NewBoltSink(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Close() })

	var ids []string
	for _, ep := range []string{"/a", "/b", "/c"} {
		e := entry(ep, nil)
		ids = append(ids, e.ID)
		require.NoError(t, sink.Append(context.Background(), e))
	}

	recent, err := sink.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, ids[2], recent[0].ID)
	require.Equal(t, "/c", recent[0].Endpoint)
	require.Equal(t, ids[1], recent[1].ID)

	require.Error(t, sink.Append(context.Background(), domain.AccessLog{}))
}

func TestStoreSink(t *testing.T) {
	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "auth.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	sink := audit.StoreSink{Store: st}
	require.NoError(t, sink.Append(context.Background(), entry("/v1/user/info", nil)))

	logs, err := st.AccessLogs().ListAccessLogs(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Nil(t, logs[0].TargetID)
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := audit.LogSink{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	target := "u-1"
	require.NoError(t, sink.Append(context.Background(), entry("/v1/user/info", &target)))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "access", line["msg"])
	require.Equal(t, "u-1", line["target_id"])
	require.Equal(t, float64(200), line["status_code"])
}
