package partition

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Maintainer runs EnsureAhead once at start and then on a fixed interval,
// so partitions for near-future days exist before traffic arrives. Sweep
// failures are logged and never block request serving; ingest still ensures
// partitions just in time for days outside the maintained window.
type Maintainer struct {
	manager   *Manager
	daysAhead int
	interval  time.Duration
	log       zerolog.Logger

	started  bool
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewMaintainer returns a stopped Maintainer sweeping daysAhead days every
// interval.
func NewMaintainer(manager *Manager, daysAhead int, interval time.Duration, log zerolog.Logger) *Maintainer {
	return &Maintainer{
		manager:   manager,
		daysAhead: daysAhead,
		interval:  interval,
		log:       log,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start runs one immediate sweep, then launches the background loop.
// The initial sweep's error is returned so startup can fail fast when the
// database is unreachable; later sweep failures are only logged.
func (m *Maintainer) Start(ctx context.Context) error {
	if err := m.manager.EnsureAhead(ctx, m.daysAhead); err != nil {
		return err
	}
	m.started = true
	go m.loop()
	return nil
}

func (m *Maintainer) loop() {
	defer close(m.done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			if err := m.manager.EnsureAhead(ctx, m.daysAhead); err != nil {
				m.log.Error().Err(err).Msg("partition sweep failed")
			} else {
				m.log.Debug().Int("days_ahead", m.daysAhead).Msg("partition sweep complete")
			}
			cancel()
		}
	}
}

// Stop terminates the background loop and waits for it to exit. Safe to call
// more than once, and a no-op if Start never succeeded.
func (m *Maintainer) Stop() {
	if !m.started {
		return
	}
	m.stopOnce.Do(func() { close(m.stop) })
	<-m.done
}
