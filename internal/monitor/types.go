package monitor

import (
	"time"

	"github.com/ngenohkevin/procwatch-agent/internal/system"
)

// Status is the normalized run state of a process
type Status string

const (
	StatusRunning  Status = "running"
	StatusSleeping Status = "sleeping"
	StatusZombie   Status = "zombie"
	StatusStopped  Status = "stopped"
	StatusOther    Status = "other"
)

// statusFromRaw normalizes the raw collector status string
func statusFromRaw(raw string) Status {
	switch raw {
	case "running":
		return StatusRunning
	case "sleep", "idle", "wait":
		return StatusSleeping
	case "zombie":
		return StatusZombie
	case "stop":
		return StatusStopped
	default:
		return StatusOther
	}
}

// ProcessIdentity uniquely identifies a process instance. The start time
// disambiguates PID reuse: a recycled PID with a different start time is a
// different process and is never diffed against the old one.
type ProcessIdentity struct {
	PID       int32 `json:"pid"`
	StartTime int64 `json:"start_time"` // unix milliseconds
}

// ProcessMetrics holds the derived per-process metrics for one tick.
// CPUPercent is un-normalized: 100 means one core fully busy, so it ranges
// 0-100*cores on multi-core hosts.
type ProcessMetrics struct {
	PID           int32         `json:"pid"`
	StartTime     time.Time     `json:"start_time"`
	Name          string        `json:"name"`
	Cmdline       string        `json:"cmdline"`
	Username      string        `json:"username"`
	Status        Status        `json:"status"`
	CPUPercent    float64       `json:"cpu_percent"`
	MemoryRSS     uint64        `json:"memory_rss"`
	MemoryVMS     uint64        `json:"memory_vms"`
	DiskReadRate  float64       `json:"disk_read_rate"`
	DiskWriteRate float64       `json:"disk_write_rate"`
	NumThreads    int32         `json:"num_threads"`
	Runtime       time.Duration `json:"runtime"`
}

// Identity returns the composite key for this process instance
func (m *ProcessMetrics) Identity() ProcessIdentity {
	return ProcessIdentity{PID: m.PID, StartTime: m.StartTime.UnixMilli()}
}

// CPUMetrics holds system-wide CPU usage. UsagePercent is normalized 0-100
// across all cores; PerCore entries are 0-100 each.
type CPUMetrics struct {
	UsagePercent float64   `json:"usage_percent"`
	PerCore      []float64 `json:"per_core"`
	Count        int       `json:"count"`
	Temperature  *float64  `json:"temperature,omitempty"`
}

// MemoryMetrics holds system-wide memory usage
type MemoryMetrics struct {
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Available   uint64  `json:"available"`
	UsedPercent float64 `json:"used_percent"`
	SwapTotal   uint64  `json:"swap_total"`
	SwapUsed    uint64  `json:"swap_used"`
}

// NetworkMetrics holds per-interface counters plus derived rates
type NetworkMetrics struct {
	Name      string  `json:"name"`
	BytesSent uint64  `json:"bytes_sent"`
	BytesRecv uint64  `json:"bytes_recv"`
	SentRate  float64 `json:"sent_rate"`
	RecvRate  float64 `json:"recv_rate"`
}

// DiskIOMetrics holds per-device counters plus derived rates
type DiskIOMetrics struct {
	Name       string  `json:"name"`
	ReadBytes  uint64  `json:"read_bytes"`
	WriteBytes uint64  `json:"write_bytes"`
	ReadRate   float64 `json:"read_rate"`
	WriteRate  float64 `json:"write_rate"`
}

// SystemMetrics aggregates all system-wide metrics for one tick. GPUs and
// CPU temperature are absent when the host has no supported hardware.
type SystemMetrics struct {
	CPU     CPUMetrics                `json:"cpu"`
	Memory  MemoryMetrics             `json:"memory"`
	GPUs    []system.GPUStats         `json:"gpus,omitempty"`
	Network map[string]NetworkMetrics `json:"network"`
	Disks   map[string]DiskIOMetrics  `json:"disks"`
}

// Snapshot is one tick's complete view of system and process metrics.
// It is immutable once published; a new tick replaces it wholesale.
type Snapshot struct {
	Timestamp time.Time        `json:"timestamp"`
	System    SystemMetrics    `json:"system"`
	Processes []ProcessMetrics `json:"processes"`
}
