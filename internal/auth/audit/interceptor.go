// Package audit records an AccessLog for every request to an operation
// registered with FlagAudit. Records are queued and written by background
// workers, so a slow or failing sink never delays or alters a response.
package audit

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"

	"github.com/aussiebroadwan/nexus/internal/auth/authctx"
	"github.com/aussiebroadwan/nexus/internal/auth/domain"
	"github.com/aussiebroadwan/nexus/internal/auth/metrics"
	"github.com/aussiebroadwan/nexus/pkg/httpx"
	"github.com/aussiebroadwan/nexus/pkg/idx"
)

const (
	DefaultQueueSize     = 1024
	DefaultWorkers       = 2
	DefaultAppendTimeout = 5 * time.Second

	// TargetParam is the path, query and body key naming the affected user.
	TargetParam = "userId"
)

// Sink persists access logs.
type Sink interface {
	Append(ctx context.Context, entry domain.AccessLog) error
}

type Options struct {
	QueueSize     int
	Workers       int
	AppendTimeout time.Duration
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
}

type Interceptor struct {
	registry *Registry
	sink     Sink
	opts     Options

	mu     sync.RWMutex
	closed bool
	queue  chan domain.AccessLog
	wg     sync.WaitGroup

	dropped atomic.Uint64
}

func NewInterceptor(registry *Registry, sink Sink, opts Options) *Interceptor {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.AppendTimeout <= 0 {
		opts.AppendTimeout = DefaultAppendTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Interceptor{
		registry: registry,
		sink:     sink,
		opts:     opts,
		queue:    make(chan domain.AccessLog, opts.QueueSize),
	}
}

// Start launches the workers draining the queue.
func (i *Interceptor) Start() {
	for range i.opts.Workers {
		i.wg.Add(1)
		go i.work()
	}
	i.opts.Logger.Info("audit interceptor started",
		"workers", i.opts.Workers,
		"queue_size", i.opts.QueueSize,
	)
}

// Stop stops accepting records and waits for queued ones to be written or
// for ctx to end.
func (i *Interceptor) Stop(ctx context.Context) error {
	i.mu.Lock()
	if !i.closed {
		i.closed = true
		close(i.queue)
	}
	i.mu.Unlock()

	done := make(chan struct{})
	go func() {
		i.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		i.opts.Logger.Info("audit interceptor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dropped counts records discarded because the queue was full.
func (i *Interceptor) Dropped() uint64 { return i.dropped.Load() }

func (i *Interceptor) work() {
	defer i.wg.Done()
	for entry := range i.queue {
		ctx, cancel := context.WithTimeout(context.Background(), i.opts.AppendTimeout)
		err := i.sink.Append(ctx, entry)
		cancel()

		if err != nil {
			i.opts.Metrics.ObserveAudit(metrics.AuditFailed)
			i.opts.Logger.Warn("audit append failed",
				"error", err,
				"endpoint", entry.Endpoint,
				"request_id", entry.ID,
			)
			continue
		}
		i.opts.Metrics.ObserveAudit(metrics.AuditWritten)
	}
}

func (i *Interceptor) enqueue(entry domain.AccessLog) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.closed {
		i.dropped.Add(1)
		i.opts.Metrics.ObserveAudit(metrics.AuditDropped)
		return
	}

	select {
	case i.queue <- entry:
	default:
		i.dropped.Add(1)
		i.opts.Metrics.ObserveAudit(metrics.AuditDropped)
		i.opts.Logger.Warn("audit queue full, record dropped", "endpoint", entry.Endpoint)
	}
}

// Wrap returns h unchanged unless op is registered with FlagAudit.
func (i *Interceptor) Wrap(op string, h http.Handler) http.Handler {
	if !i.registry.Audited(op) {
		return h
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		body := peekBody(r)
		rec := httpx.NewStatusRecorder(w)

		defer func() {
			p := recover()

			status := rec.Status
			if p != nil {
				status = http.StatusInternalServerError
			}

			requester := authctx.From(r.Context()).UserID
			if requester == "" {
				requester = domain.AnonymousRequester
			}

			i.enqueue(domain.AccessLog{
				ID:          idx.NewAt(start).String(),
				Endpoint:    endpoint(r),
				Method:      r.Method,
				RequesterID: requester,
				TargetID:    targetID(r, body),
				IPAddress:   httpx.ClientIP(r),
				UserAgent:   httpx.UserAgent(r),
				StatusCode:  status,
				LatencyMS:   time.Since(start).Milliseconds(),
				CreatedAt:   start.UTC(),
			})

			if p != nil {
				panic(p)
			}
		}()

		h.ServeHTTP(rec, r)
	})
}

// endpoint is the matched route template so records group by route, falling
// back to the raw path when no pattern matched.
func endpoint(r *http.Request) string {
	if r.Pattern == "" {
		return r.URL.Path
	}
	if _, path, ok := strings.Cut(r.Pattern, " "); ok {
		return path
	}
	return r.Pattern
}

// peekBody reads up to MaxBodyBytes of a JSON body and puts it back so the
// handler still sees the full stream.
func peekBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	if !strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return nil
	}

	// A read error surfaces again when the handler reads the rest.
	buf, _ := io.ReadAll(io.LimitReader(r.Body, httpx.MaxBodyBytes))
	r.Body = readCloser{io.MultiReader(bytes.NewReader(buf), r.Body), r.Body}
	return buf
}

type readCloser struct {
	io.Reader
	io.Closer
}

// targetID resolves the affected user from the route, then the query, then
// the JSON body (userId, then email).
func targetID(r *http.Request, body []byte) *string {
	if v := r.PathValue(TargetParam); v != "" {
		return &v
	}
	if v := r.URL.Query().Get(TargetParam); v != "" {
		return &v
	}
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return nil
	}
	for _, key := range []string{TargetParam, "email"} {
		if res := gjson.GetBytes(body, key); res.Exists() && res.String() != "" {
			v := res.String()
			return &v
		}
	}
	return nil
}
