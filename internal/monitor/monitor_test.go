package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorPublishesAfterTick(t *testing.T) {
	t0 := baseTime()
	start := t0.Add(-time.Minute)

	src := newFakeSource(t,
		fakeResult{reading: reading(t0, proc(1, start, 1.0, 0, 0))},
	)

	m := New(src, DefaultRules(), time.Second, 100)
	assert.Nil(t, m.Latest())

	m.tick(context.Background())

	snap := m.Latest()
	require.NotNil(t, snap)
	assert.Equal(t, t0, snap.Timestamp)
	assert.Len(t, snap.Processes, 1)
}

func TestMonitorFailedTickRetainsSnapshot(t *testing.T) {
	t0 := baseTime()
	start := t0.Add(-time.Minute)

	src := newFakeSource(t,
		fakeResult{reading: reading(t0, proc(1, start, 1.0, 0, 0))},
		fakeResult{err: errors.New("proc unreadable")},
	)

	m := New(src, DefaultRules(), time.Second, 100)
	m.tick(context.Background())
	published := m.Latest()
	require.NotNil(t, published)

	// Failed tick: previous snapshot stays the latest published value
	m.tick(context.Background())
	assert.Same(t, published, m.Latest())
	assert.Equal(t, 1, m.failStreak)
}

func TestMonitorEmitsAlertsIntoHistory(t *testing.T) {
	t0 := baseTime()
	start := t0.Add(-time.Minute)

	zombie := proc(5, start, 0, 0, 0)
	zombie.Status = "zombie"

	src := newFakeSource(t,
		fakeResult{reading: reading(t0, zombie)},
	)

	m := New(src, DefaultRules(), time.Second, 100)
	m.tick(context.Background())

	alerts := m.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, "Zombie process", alerts[0].Rule)
}

func TestMonitorRunStopsOnCancel(t *testing.T) {
	src := newFakeSource(t,
		fakeResult{reading: reading(baseTime())},
	)

	m := New(src, DefaultRules(), time.Hour, 100)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on context cancellation")
	}
}
