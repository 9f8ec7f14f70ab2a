package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotAt(ts time.Time, procs ...ProcessMetrics) *Snapshot {
	return &Snapshot{
		Timestamp: ts,
		Processes: procs,
	}
}

func cpuProc(pid int32, start time.Time, cpuPercent float64) ProcessMetrics {
	return ProcessMetrics{
		PID:        pid,
		StartTime:  start,
		Name:       "worker",
		Status:     StatusRunning,
		CPUPercent: cpuPercent,
	}
}

func highCPURule() Rule {
	return Rule{
		Name:        "High CPU",
		Description: "sustained high cpu",
		Scope:       ScopeProcess,
		Condition:   Condition{Kind: CPUAbove, Threshold: 80, Sustain: 60 * time.Second},
		Severity:    SeverityWarning,
	}
}

func TestDetectorSustainedRuleOneAlertPerCrossing(t *testing.T) {
	d := NewDetector([]Rule{highCPURule()}, 100)
	t0 := baseTime()
	start := t0.Add(-time.Hour)

	// CPU at 85% from t=0 through t=60: nothing until the sustain duration
	// is met, then exactly one alert
	for offset := 0; offset < 60; offset += 10 {
		emitted := d.Check(snapshotAt(t0.Add(time.Duration(offset)*time.Second), cpuProc(1, start, 85)))
		assert.Empty(t, emitted, "no alert expected at t=%d", offset)
	}

	emitted := d.Check(snapshotAt(t0.Add(60*time.Second), cpuProc(1, start, 85)))
	require.Len(t, emitted, 1)
	assert.Equal(t, "High CPU", emitted[0].Rule)
	assert.Equal(t, SeverityWarning, emitted[0].Severity)
	assert.Equal(t, t0.Add(60*time.Second), emitted[0].Timestamp)

	// Condition holds: suppressed
	emitted = d.Check(snapshotAt(t0.Add(70*time.Second), cpuProc(1, start, 85)))
	assert.Empty(t, emitted)

	// Drops below the threshold: state cleared
	emitted = d.Check(snapshotAt(t0.Add(80*time.Second), cpuProc(1, start, 50)))
	assert.Empty(t, emitted)

	// Back above: the sustain clock starts over, second alert only after
	// another full 60 seconds
	for offset := 90; offset < 150; offset += 10 {
		emitted = d.Check(snapshotAt(t0.Add(time.Duration(offset)*time.Second), cpuProc(1, start, 85)))
		assert.Empty(t, emitted, "no alert expected at t=%d", offset)
	}

	emitted = d.Check(snapshotAt(t0.Add(150*time.Second), cpuProc(1, start, 85)))
	require.Len(t, emitted, 1)
	assert.Equal(t, uint64(2), emitted[0].ID)
}

func TestDetectorInstantaneousRuleFiresSameTick(t *testing.T) {
	d := NewDetector(DefaultRules(), 100)
	t0 := baseTime()
	start := t0.Add(-time.Hour)

	p := cpuProc(7, start, 0)
	p.MemoryRSS = 9 << 30 // 9GB, over the 8GB critical threshold

	emitted := d.Check(snapshotAt(t0, p))
	require.Len(t, emitted, 1)
	assert.Equal(t, "Critical memory", emitted[0].Rule)
	assert.Equal(t, SeverityCritical, emitted[0].Severity)
	assert.Equal(t, t0, emitted[0].Timestamp)

	// Still over threshold next tick: suppressed until it clears
	emitted = d.Check(snapshotAt(t0.Add(time.Second), p))
	assert.Empty(t, emitted)
}

func TestDetectorZombieAlertAndCleanup(t *testing.T) {
	d := NewDetector(DefaultRules(), 100)
	t0 := baseTime()
	start := t0.Add(-time.Minute)

	zombie := cpuProc(9, start, 0)
	zombie.Status = StatusZombie

	emitted := d.Check(snapshotAt(t0, zombie))
	require.Len(t, emitted, 1)
	assert.Equal(t, "Zombie process", emitted[0].Rule)
	assert.Equal(t, SeverityInfo, emitted[0].Severity)

	// Process exits: all of its rule state is purged
	emitted = d.Check(snapshotAt(t0.Add(time.Second)))
	assert.Empty(t, emitted)
	assert.Empty(t, d.states)
}

func TestDetectorStatePurgedOnExit(t *testing.T) {
	d := NewDetector([]Rule{highCPURule()}, 100)
	t0 := baseTime()
	start := t0.Add(-time.Hour)

	d.Check(snapshotAt(t0, cpuProc(1, start, 85)))
	assert.Len(t, d.states, 1)

	// Identity gone from the snapshot, state must not linger
	d.Check(snapshotAt(t0.Add(time.Second)))
	assert.Empty(t, d.states)

	// Re-appearing later starts a fresh sustain clock, so 60s must elapse
	// again before any alert
	d.Check(snapshotAt(t0.Add(2*time.Second), cpuProc(1, start, 85)))
	emitted := d.Check(snapshotAt(t0.Add(30*time.Second), cpuProc(1, start, 85)))
	assert.Empty(t, emitted)
}

func TestDetectorPIDReuseIsSeparateTarget(t *testing.T) {
	d := NewDetector([]Rule{highCPURule()}, 100)
	t0 := baseTime()

	oldStart := t0.Add(-time.Hour)
	d.Check(snapshotAt(t0, cpuProc(1, oldStart, 85)))

	// Same pid, new start time: sustain time from the old instance must
	// not carry over
	newStart := t0.Add(30 * time.Second)
	emitted := d.Check(snapshotAt(t0.Add(61*time.Second), cpuProc(1, newStart, 85)))
	assert.Empty(t, emitted)
	assert.Len(t, d.states, 1)
}

func TestDetectorSystemScopeRule(t *testing.T) {
	netRule := Rule{
		Name:        "High network I/O",
		Description: "system-wide network throughput",
		Scope:       ScopeSystem,
		Condition:   Condition{Kind: NetworkAbove, Threshold: 1 << 20, Sustain: 0},
		Severity:    SeverityWarning,
	}
	d := NewDetector([]Rule{netRule}, 100)
	t0 := baseTime()

	snap := snapshotAt(t0)
	snap.System.Network = map[string]NetworkMetrics{
		"eth0": {Name: "eth0", SentRate: 1 << 20, RecvRate: 1 << 20},
	}

	emitted := d.Check(snap)
	require.Len(t, emitted, 1)
	assert.True(t, emitted[0].System)
	assert.Equal(t, "system", emitted[0].Target)
}

func TestDetectorAlertsRecordedInHistory(t *testing.T) {
	d := NewDetector(DefaultRules(), 100)
	t0 := baseTime()
	start := t0.Add(-time.Minute)

	p := cpuProc(3, start, 99) // over the 95% critical threshold
	d.Check(snapshotAt(t0, p))

	history := d.History()
	require.Len(t, history, 1)
	assert.Equal(t, "Critical CPU", history[0].Rule)
	assert.Equal(t, "worker (pid 3)", history[0].Target)
}

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()
	require.Len(t, rules, 6)

	byName := make(map[string]Rule, len(rules))
	for _, r := range rules {
		byName[r.Name] = r
	}

	assert.Equal(t, Condition{Kind: CPUAbove, Threshold: 80, Sustain: 60 * time.Second}, byName["High CPU"].Condition)
	assert.Equal(t, SeverityWarning, byName["High CPU"].Severity)

	assert.Equal(t, Condition{Kind: CPUAbove, Threshold: 95}, byName["Critical CPU"].Condition)
	assert.Equal(t, SeverityCritical, byName["Critical CPU"].Severity)

	assert.Equal(t, Condition{Kind: MemoryAbove, Threshold: 2 << 30, Sustain: 30 * time.Second}, byName["Memory growth"].Condition)
	assert.Equal(t, Condition{Kind: MemoryAbove, Threshold: 8 << 30}, byName["Critical memory"].Condition)

	assert.Equal(t, Condition{Kind: DiskIOAbove, Threshold: 100 << 20, Sustain: 60 * time.Second}, byName["High disk I/O"].Condition)

	assert.Equal(t, Condition{Kind: ZombieState}, byName["Zombie process"].Condition)
	assert.Equal(t, SeverityInfo, byName["Zombie process"].Severity)
}
