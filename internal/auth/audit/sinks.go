package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	bolt "go.etcd.io/bbolt"

	"github.com/aussiebroadwan/nexus/internal/auth/domain"
	"github.com/aussiebroadwan/nexus/internal/auth/store"
)

// StoreSink writes to the access_logs table.
type StoreSink struct {
	Store store.Store
}

func (s StoreSink) Append(ctx context.Context, entry domain.AccessLog) error {
	return s.Store.AccessLogs().AppendAccessLog(ctx, entry)
}

// RedisSink appends to a Redis stream with XADD, trimming it approximately
// to MaxLen entries.
type RedisSink struct {
	Client redis.UniversalClient
	Stream string
	MaxLen int64
}

const DefaultRedisStream = "nexus:audit"

func (s RedisSink) Append(ctx context.Context, entry domain.AccessLog) error {
	stream := s.Stream
	if stream == "" {
		stream = DefaultRedisStream
	}

	target := ""
	if entry.TargetID != nil {
		target = *entry.TargetID
	}

	err := s.Client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: s.MaxLen,
		Approx: s.MaxLen > 0,
		Values: map[string]any{
			"id":           entry.ID,
			"endpoint":     entry.Endpoint,
			"method":       entry.Method,
			"requester_id": entry.RequesterID,
			"target_id":    target,
			"ip_address":   entry.IPAddress,
			"user_agent":   entry.UserAgent,
			"status_code":  strconv.Itoa(entry.StatusCode),
			"latency_ms":   strconv.FormatInt(entry.LatencyMS, 10),
			"created_at":   entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", stream, err)
	}
	return nil
}

var accessLogBucket = []byte("access_logs")

const boltOpenTimeout = time.Second

// BoltSink appends JSON records to a local bbolt file, keyed by record id so
// keys sort by time.
type BoltSink struct {
	db *bolt.DB
}

func NewBoltSink(path string) (*BoltSink, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: boltOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("open audit file: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(accessLogBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init audit file: %w", err)
	}
	return &BoltSink{db: db}, nil
}

func (s *BoltSink) Close() error { return s.db.Close() }

func (s *BoltSink) Append(_ context.Context, entry domain.AccessLog) error {
	if entry.ID == "" {
		return errors.New("audit: record without id")
	}
	value, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(accessLogBucket).Put([]byte(entry.ID), value)
	})
}

// Recent returns up to limit records, newest first.
func (s *BoltSink) Recent(limit int) ([]domain.AccessLog, error) {
	var out []domain.AccessLog
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(accessLogBucket).Cursor()
		for k, v := c.Last(); k != nil && len(out) < limit; k, v = c.Prev() {
			var entry domain.AccessLog
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("decode %s: %w", k, err)
			}
			out = append(out, entry)
		}
		return nil
	})
	return out, err
}

// LogSink writes each record as a structured log line.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Append(ctx context.Context, entry domain.AccessLog) error {
	attrs := []slog.Attr{
		slog.String("id", entry.ID),
		slog.String("endpoint", entry.Endpoint),
		slog.String("method", entry.Method),
		slog.String("requester_id", entry.RequesterID),
		slog.String("ip_address", entry.IPAddress),
		slog.String("user_agent", entry.UserAgent),
		slog.Int("status_code", entry.StatusCode),
		slog.Int64("latency_ms", entry.LatencyMS),
	}
	if entry.TargetID != nil {
		attrs = append(attrs, slog.String("target_id", *entry.TargetID))
	}
	s.Logger.LogAttrs(ctx, slog.LevelInfo, "access", attrs...)
	return nil
}
