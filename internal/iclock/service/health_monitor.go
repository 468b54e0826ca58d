package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// StatusSetter receives the result of each health probe.
type StatusSetter interface {
	SetServing(serving bool)
}

// HealthMonitor periodically pings the database and publishes the result.
// It runs as a background goroutine and is stopped via its context or Stop.
type HealthMonitor struct {
	db       Pinger
	status   StatusSetter
	interval time.Duration
	timeout  time.Duration
	logger   logrus.FieldLogger

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
	serving  *bool
}

// NewHealthMonitor creates a monitor but does not start it. An interval of
// zero or less defaults to 15s.
func NewHealthMonitor(db Pinger, status StatusSetter, interval time.Duration, logger logrus.FieldLogger) *HealthMonitor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &HealthMonitor{
		db:       db,
		status:   status,
		interval: interval,
		timeout:  3 * time.Second,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start probes once immediately, then on every interval until ctx is
// cancelled or Stop is called.
func (m *HealthMonitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	m.probe(ctx)
	go m.loop(ctx)
	m.logger.WithField("interval", m.interval).Info("health monitor started")
}

// Stop signals the monitor to exit and waits for it. Safe to call twice.
func (m *HealthMonitor) Stop() {
	m.stopOnce.Do(func() {
		if m.cancel != nil {
			m.cancel()
		} else {
			close(m.done)
		}
	})
	<-m.done
}

func (m *HealthMonitor) loop(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

func (m *HealthMonitor) probe(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.db.PingContext(pingCtx)
	serving := err == nil
	if m.serving == nil || *m.serving != serving {
		if serving {
			m.logger.Info("database reachable, serving")
		} else {
			m.logger.WithError(err).Warn("database unreachable, not serving")
		}
	}
	m.serving = &serving
	m.status.SetServing(serving)
}
