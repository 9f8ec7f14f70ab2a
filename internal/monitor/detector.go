package monitor

import (
	"fmt"
	"time"
)

// target identifies what a rule state belongs to: the whole system, or one
// process instance
type target struct {
	System    bool
	PID       int32
	StartTime int64
}

func processTarget(id ProcessIdentity) target {
	return target{PID: id.PID, StartTime: id.StartTime}
}

// stateKey keys the sustain bookkeeping per (target, rule) pair
type stateKey struct {
	target target
	rule   string
}

// ruleState exists only while a rule's predicate has been continuously true.
// fired suppresses repeat alerts until the predicate clears and re-arms.
type ruleState struct {
	firstTrue time.Time
	fired     bool
}

// Detector evaluates the rule set against each snapshot and records emitted
// alerts in a bounded history. It is driven by the tick loop; its state maps
// are not safe for concurrent use, the history is.
type Detector struct {
	rules   []Rule
	states  map[stateKey]*ruleState
	history *AlertHistory
}

// NewDetector creates a detector with the given rule set and history capacity
func NewDetector(rules []Rule, historySize int) *Detector {
	return &Detector{
		rules:   rules,
		states:  make(map[stateKey]*ruleState),
		history: NewAlertHistory(historySize),
	}
}

// Rules returns the configured rule set
func (d *Detector) Rules() []Rule {
	return d.rules
}

// History returns the emitted alerts, oldest first
func (d *Detector) History() []Alert {
	return d.history.All()
}

// Check evaluates every rule against the snapshot, updates sustain state and
// returns the alerts emitted for this tick. State for processes no longer in
// the snapshot is purged afterwards.
func (d *Detector) Check(snap *Snapshot) []Alert {
	var emitted []Alert

	for i := range d.rules {
		rule := &d.rules[i]
		switch rule.Scope {
		case ScopeSystem:
			value, ok := systemValue(snap, rule.Condition.Kind)
			if a := d.evaluate(target{System: true}, rule, value, ok, snap.Timestamp, "system"); a != nil {
				emitted = append(emitted, *a)
			}
		default:
			for j := range snap.Processes {
				p := &snap.Processes[j]
				value, ok := processValue(p, rule.Condition.Kind)
				label := fmt.Sprintf("%s (pid %d)", p.Name, p.PID)
				if a := d.evaluate(processTarget(p.Identity()), rule, value, ok, snap.Timestamp, label); a != nil {
					emitted = append(emitted, *a)
				}
			}
		}
	}

	d.purgeExited(snap)

	return emitted
}

// evaluate runs the shared sustain state machine for one (target, rule) pair
func (d *Detector) evaluate(t target, rule *Rule, value float64, applicable bool, now time.Time, label string) *Alert {
	key := stateKey{target: t, rule: rule.Name}

	if !applicable || value <= rule.Condition.Threshold {
		// Predicate cleared: drop the state so the sustain clock and the
		// alert suppression both reset
		delete(d.states, key)
		return nil
	}

	st, ok := d.states[key]
	if !ok {
		st = &ruleState{firstTrue: now}
		d.states[key] = st
	}

	if st.fired || now.Sub(st.firstTrue) < rule.Condition.Sustain {
		return nil
	}
	st.fired = true

	alert := d.history.Append(Alert{
		Timestamp: now,
		Rule:      rule.Name,
		Severity:  rule.Severity,
		System:    t.System,
		PID:       t.PID,
		StartTime: t.StartTime,
		Target:    label,
		Message:   message(rule, value),
	})
	return &alert
}

// purgeExited removes sustain state for processes absent from the snapshot
func (d *Detector) purgeExited(snap *Snapshot) {
	live := make(map[target]struct{}, len(snap.Processes))
	for i := range snap.Processes {
		live[processTarget(snap.Processes[i].Identity())] = struct{}{}
	}

	for key := range d.states {
		if key.target.System {
			continue
		}
		if _, ok := live[key.target]; !ok {
			delete(d.states, key)
		}
	}
}

// processValue returns the metric a condition compares against its threshold
// for a process target, and whether the condition applies to processes at
// all. Zombie state maps to 1/0 so the shared threshold comparison works.
func processValue(p *ProcessMetrics, kind ConditionKind) (float64, bool) {
	switch kind {
	case CPUAbove:
		return p.CPUPercent, true
	case MemoryAbove:
		return float64(p.MemoryRSS), true
	case DiskIOAbove:
		return p.DiskReadRate + p.DiskWriteRate, true
	case ZombieState:
		if p.Status == StatusZombie {
			return 1, true
		}
		return 0, false
	default:
		// NetworkAbove has no per-process counters
		return 0, false
	}
}

// systemValue is processValue for the system target
func systemValue(snap *Snapshot, kind ConditionKind) (float64, bool) {
	switch kind {
	case CPUAbove:
		return snap.System.CPU.UsagePercent, true
	case MemoryAbove:
		return float64(snap.System.Memory.Used), true
	case DiskIOAbove:
		var total float64
		for _, d := range snap.System.Disks {
			total += d.ReadRate + d.WriteRate
		}
		return total, true
	case NetworkAbove:
		var total float64
		for _, n := range snap.System.Network {
			total += n.SentRate + n.RecvRate
		}
		return total, true
	default:
		return 0, false
	}
}

func message(rule *Rule, value float64) string {
	switch rule.Condition.Kind {
	case CPUAbove:
		return fmt.Sprintf("CPU usage %.1f%% (threshold %.1f%%)", value, rule.Condition.Threshold)
	case MemoryAbove:
		return fmt.Sprintf("memory usage %.2f GB (threshold %.2f GB)", value/gib, rule.Condition.Threshold/gib)
	case DiskIOAbove:
		return fmt.Sprintf("disk I/O %.2f MB/s (threshold %.2f MB/s)", value/mib, rule.Condition.Threshold/mib)
	case NetworkAbove:
		return fmt.Sprintf("network I/O %.2f MB/s (threshold %.2f MB/s)", value/mib, rule.Condition.Threshold/mib)
	case ZombieState:
		return "process is in zombie state"
	default:
		return rule.Description
	}
}
