package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/party-leaderboard/internal/config"
	"github.com/riskibarqy/party-leaderboard/internal/platform/logging"
)

// Telemetry owns the log sinks, tracing exporter and profilers started for
// one process.
type Telemetry struct {
	base   *logging.Logger
	logger *logging.Logger
	stops  []namedStop
}

type namedStop struct {
	name string
	stop func(context.Context) error
}

// Start brings up every enabled backend. On error the ones already started
// are shut down before returning. Log shipping starts first so Logger
// returns a logger that feeds it.
func Start(cfg config.Config, logger *logging.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = logging.Default()
	}

	base, stopShipping, err := startLogShipping(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("start betterstack: %w", err)
	}
	t := &Telemetry{base: base, logger: base.Named("observability")}
	if stopShipping != nil {
		t.stops = append(t.stops, namedStop{name: "betterstack", stop: stopShipping})
	}

	steps := []struct {
		name  string
		start func(config.Config, *logging.Logger) (func(context.Context) error, error)
	}{
		{name: "uptrace", start: startUptrace},
		{name: "pyroscope", start: startPyroscope},
		{name: "pprof", start: startPprof},
	}
	for _, step := range steps {
		stop, err := step.start(cfg, t.logger)
		if err != nil {
			_ = t.Shutdown(context.Background())
			return nil, fmt.Errorf("start %s: %w", step.name, err)
		}
		if stop != nil {
			t.stops = append(t.stops, namedStop{name: step.name, stop: stop})
		}
	}
	return t, nil
}

// Shutdown stops backends in reverse start order and joins their errors.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error
	for i := len(t.stops) - 1; i >= 0; i-- {
		s := t.stops[i]
		if err := s.stop(ctx); err != nil {
			t.logger.Warn("telemetry shutdown failed", "backend", s.name, "error", err)
			errs = append(errs, err)
		}
	}
	t.stops = nil
	return errors.Join(errs...)
}

// Logger is the process logger, teed into the log sink when shipping is on.
func (t *Telemetry) Logger() *logging.Logger {
	if t == nil {
		return logging.Default()
	}
	return t.base
}

// Running lists the backends that are currently started.
func (t *Telemetry) Running() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.stops))
	for _, s := range t.stops {
		names = append(names, s.name)
	}
	return names
}
