package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/riskibarqy/party-leaderboard/internal/domain/roster"
)

// SubscribeToChanges listens on the notify channel and calls fn with the
// approved roster before and after each burst of notifications. A burst is
// coalesced into one refetch after the debounce window; a reconnect counts
// as a notification because events may have been missed.
func (s *Store) SubscribeToChanges(ctx context.Context, fn roster.ChangeFunc) (func(), error) {
	if fn == nil {
		return nil, fmt.Errorf("change handler is required")
	}
	if s.opts.ListenDSN == "" {
		return nil, fmt.Errorf("%w: change feed is not configured", roster.ErrStoreUnavailable)
	}

	previous, err := s.FetchTeams(ctx, roster.StatusApproved)
	if err != nil {
		return nil, err
	}

	listener := pq.NewListener(s.opts.ListenDSN, s.opts.MinReconnect, s.opts.MaxReconnect, s.onListenerEvent)
	if err := listener.Listen(s.opts.Channel); err != nil {
		_ = listener.Close()
		return nil, classifyError("listen", err)
	}

	feedCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.consume(feedCtx, listener, previous, fn)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
			if err := listener.Close(); err != nil {
				s.logger.Warn("close roster listener failed", "error", err)
			}
		})
	}, nil
}

func (s *Store) consume(ctx context.Context, listener *pq.Listener, previous []roster.Team, fn roster.ChangeFunc) {
	ping := time.NewTicker(s.opts.PingInterval)
	defer ping.Stop()

	var debounce *time.Timer
	var fire <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-listener.Notify:
			if !ok {
				return
			}
			if n == nil {
				s.logger.Info("roster listener reconnected, refetching")
			}
			if fire == nil {
				debounce = time.NewTimer(s.opts.Debounce)
				fire = debounce.C
			}
		case <-fire:
			fire = nil
			current, err := s.FetchTeams(ctx, roster.StatusApproved)
			if err != nil {
				s.logger.WarnContext(ctx, "refetch after roster notification failed", "error", err)
				continue
			}
			fn(roster.CloneTeams(previous), roster.CloneTeams(current))
			previous = current
		case <-ping.C:
			go func() {
				if err := listener.Ping(); err != nil {
					s.logger.Warn("roster listener ping failed", "error", err)
				}
			}()
		}
	}
}

func (s *Store) onListenerEvent(event pq.ListenerEventType, err error) {
	switch event {
	case pq.ListenerEventConnectionAttemptFailed:
		s.logger.Warn("roster listener connection attempt failed", "error", err)
	case pq.ListenerEventDisconnected:
		s.logger.Warn("roster listener disconnected", "error", err)
	case pq.ListenerEventReconnected:
		s.logger.Info("roster listener reconnected")
	}
}
