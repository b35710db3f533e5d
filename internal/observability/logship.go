package observability

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/party-leaderboard/internal/config"
	"github.com/riskibarqy/party-leaderboard/internal/platform/logging"
	"github.com/valyala/bytebufferpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logShipQueueSize    = 1024
	logShipDrainTimeout = 5 * time.Second
)

// startLogShipping tees base into a Better Stack HTTP sink at
// BETTERSTACK_MIN_LEVEL and above. With shipping disabled base is returned
// unchanged with a nil stop func.
func startLogShipping(cfg config.Config, base *logging.Logger) (*logging.Logger, func(context.Context) error, error) {
	if !cfg.BetterStackEnabled {
		base.Info("log shipping disabled", "reason", "BETTERSTACK_ENABLED=false")
		return base, nil, nil
	}
	endpoint := betterStackEndpoint(cfg.BetterStackEndpoint)
	if endpoint == "" {
		return nil, nil, fmt.Errorf("betterstack endpoint cannot be empty")
	}

	sink := newLogSink(endpoint, strings.TrimSpace(cfg.BetterStackToken), cfg.BetterStackTimeout)
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(sink),
		cfg.BetterStackMinLevel,
	)
	logger := logging.FromZap(base.Zap().WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, core)
	})))
	logger.Info("log shipping enabled", "endpoint", endpoint, "min_level", cfg.BetterStackMinLevel.String())

	return logger, func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, logShipDrainTimeout)
			defer cancel()
		}
		if err := sink.Close(ctx); err != nil {
			return fmt.Errorf("drain log sink: %w", err)
		}
		return nil
	}, nil
}

func betterStackEndpoint(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" || strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value
	}
	return "https://" + value
}

// logSink posts each JSON log line from a bounded queue. Writes never block:
// a full queue drops the line and counts it.
type logSink struct {
	endpoint string
	token    string
	client   *http.Client

	mu      sync.RWMutex
	queue   chan *bytebufferpool.ByteBuffer
	closed  bool
	done    chan struct{}
	dropped atomic.Uint64
}

func newLogSink(endpoint, token string, timeout time.Duration) *logSink {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	s := &logSink{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: timeout},
		queue:    make(chan *bytebufferpool.ByteBuffer, logShipQueueSize),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *logSink) Write(p []byte) (int, error) {
	line := bytes.TrimSpace(p)
	if len(line) == 0 {
		return len(p), nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return len(p), nil
	}

	// zap reuses p after Write returns.
	buf := bytebufferpool.Get()
	_, _ = buf.Write(line)
	select {
	case s.queue <- buf:
	default:
		bytebufferpool.Put(buf)
		if n := s.dropped.Add(1); n == 1 || n%100 == 0 {
			fmt.Fprintf(os.Stderr, "log sink queue full, dropped=%d\n", n)
		}
	}
	return len(p), nil
}

func (s *logSink) Sync() error { return nil }

func (s *logSink) run() {
	defer close(s.done)
	for buf := range s.queue {
		s.post(buf.B)
		bytebufferpool.Put(buf)
	}
}

func (s *logSink) post(line []byte) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, s.endpoint, bytes.NewReader(line))
	if err != nil {
		fmt.Fprintf(os.Stderr, "log sink request: %v\n", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log sink send: %v\n", err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusMultipleChoices {
		fmt.Fprintf(os.Stderr, "log sink send: status %d\n", resp.StatusCode)
	}
}

// Close stops accepting lines and waits for the queue to drain or ctx to end.
func (s *logSink) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
