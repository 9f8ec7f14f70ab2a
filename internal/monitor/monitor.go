package monitor

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

// Monitor drives the tick loop: sample, detect, publish. The snapshot is
// published as a whole immutable value via an atomic pointer swap, so
// concurrent readers never observe a partially updated tick.
type Monitor struct {
	sampler  *Sampler
	detector *Detector
	interval time.Duration

	latest     atomic.Pointer[Snapshot]
	failStreak int
}

// New creates a monitor reading from the given source at the given interval
func New(source Source, rules []Rule, interval time.Duration, historySize int) *Monitor {
	return &Monitor{
		sampler:  NewSampler(source),
		detector: NewDetector(rules, historySize),
		interval: interval,
	}
}

// Run executes the tick loop until the context is cancelled. Sampling
// failures drop the tick and are retried on the next one; they never stop
// the loop.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	// Prime the delta baseline so the second tick already has rates
	m.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

func (m *Monitor) tick(ctx context.Context) {
	snapshot, err := m.sampler.Sample(ctx)
	if err != nil {
		m.failStreak++
		// Warn on the first failure of a streak, then once a minute worth
		// of ticks, instead of flooding the log
		if m.failStreak == 1 || m.failStreak%60 == 0 {
			log.Printf("tick dropped (%d consecutive failures): %v", m.failStreak, err)
		}
		return
	}

	if m.failStreak > 0 {
		log.Printf("sampling recovered after %d failed ticks", m.failStreak)
		m.failStreak = 0
	}

	for _, alert := range m.detector.Check(snapshot) {
		log.Printf("alert [%s] %s: %s (%s)", alert.Severity, alert.Rule, alert.Target, alert.Message)
	}

	m.latest.Store(snapshot)
}

// Latest returns the most recently published snapshot, or nil before the
// first successful tick. The returned snapshot must not be mutated.
func (m *Monitor) Latest() *Snapshot {
	return m.latest.Load()
}

// Alerts returns the alert history, oldest first
func (m *Monitor) Alerts() []Alert {
	return m.detector.History()
}

// Rules returns the configured rule set
func (m *Monitor) Rules() []Rule {
	return m.detector.Rules()
}
