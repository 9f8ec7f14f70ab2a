package monitor

import "time"

// Severity ranks alerts; Critical > Warning > Info
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// ConditionKind selects the metric a condition is evaluated against
type ConditionKind string

const (
	// CPUAbove fires when CPU usage exceeds Threshold percent. For process
	// targets the percent is in single-core units (100 = one full core);
	// for the system target it is normalized 0-100 across all cores.
	CPUAbove ConditionKind = "cpu_above"
	// MemoryAbove fires when resident memory exceeds Threshold bytes
	MemoryAbove ConditionKind = "memory_above"
	// DiskIOAbove fires when combined read+write rate exceeds Threshold bytes/sec
	DiskIOAbove ConditionKind = "disk_io_above"
	// NetworkAbove fires when combined send+receive rate exceeds Threshold
	// bytes/sec; meaningful for the system target only, since per-process
	// network counters are not collected
	NetworkAbove ConditionKind = "network_above"
	// ZombieState fires while a process is in zombie state
	ZombieState ConditionKind = "zombie_state"
)

// Scope selects which targets a rule is evaluated against
type Scope string

const (
	ScopeProcess Scope = "process"
	ScopeSystem  Scope = "system"
)

// Condition is an instantaneous predicate plus the duration it must hold
// continuously before the rule alerts. Sustain zero means alert immediately.
type Condition struct {
	Kind      ConditionKind `json:"kind"`
	Threshold float64       `json:"threshold"`
	Sustain   time.Duration `json:"sustain"`
}

// Rule is one misbehavior rule. The rule set is fixed at startup.
type Rule struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Scope       Scope     `json:"scope"`
	Condition   Condition `json:"condition"`
	Severity    Severity  `json:"severity"`
}

const (
	gib = 1024 * 1024 * 1024
	mib = 1024 * 1024
)

// DefaultRules returns the built-in rule set
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:        "High CPU",
			Description: "Process using more than 80% CPU for an extended period",
			Scope:       ScopeProcess,
			Condition:   Condition{Kind: CPUAbove, Threshold: 80, Sustain: 60 * time.Second},
			Severity:    SeverityWarning,
		},
		{
			Name:        "Critical CPU",
			Description: "Process using more than 95% CPU",
			Scope:       ScopeProcess,
			Condition:   Condition{Kind: CPUAbove, Threshold: 95},
			Severity:    SeverityCritical,
		},
		{
			Name:        "Memory growth",
			Description: "Process using more than 2GB of RAM",
			Scope:       ScopeProcess,
			Condition:   Condition{Kind: MemoryAbove, Threshold: 2 * gib, Sustain: 30 * time.Second},
			Severity:    SeverityWarning,
		},
		{
			Name:        "Critical memory",
			Description: "Process using more than 8GB of RAM",
			Scope:       ScopeProcess,
			Condition:   Condition{Kind: MemoryAbove, Threshold: 8 * gib},
			Severity:    SeverityCritical,
		},
		{
			Name:        "High disk I/O",
			Description: "Process performing excessive disk operations",
			Scope:       ScopeProcess,
			Condition:   Condition{Kind: DiskIOAbove, Threshold: 100 * mib, Sustain: 60 * time.Second},
			Severity:    SeverityWarning,
		},
		{
			Name:        "Zombie process",
			Description: "Process is in zombie state",
			Scope:       ScopeProcess,
			Condition:   Condition{Kind: ZombieState},
			Severity:    SeverityInfo,
		},
	}
}
