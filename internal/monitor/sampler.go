package monitor

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ngenohkevin/procwatch-agent/internal/system"
)

// Source provides one complete read of raw absolute counters per call
type Source interface {
	Read(ctx context.Context) (*system.Reading, error)
}

// Sampler converts consecutive raw counter readings into per-second rates.
// It keeps the previous reading keyed by process identity so that counters
// are only ever diffed against the same process instance.
type Sampler struct {
	source Source

	prevProcs map[ProcessIdentity]system.ProcessSample
	prevCPU   []system.CPUTimes
	prevNet   map[string]system.NetCounters
	prevDisks map[string]system.DiskCounters
	prevTime  time.Time
}

// NewSampler creates a sampler reading from the given source
func NewSampler(source Source) *Sampler {
	return &Sampler{
		source:    source,
		prevProcs: make(map[ProcessIdentity]system.ProcessSample),
	}
}

// Sample performs one tick: it reads current counters, derives rates against
// the previous reading and retains the current one. On a read failure no
// state is touched and no snapshot is produced.
func (s *Sampler) Sample(ctx context.Context) (*Snapshot, error) {
	reading, err := s.source.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read counters: %w", err)
	}

	// elapsed <= 0 covers both the first tick and clock anomalies; rates
	// for such a tick are zero, never a division fault
	elapsed := 0.0
	if !s.prevTime.IsZero() {
		elapsed = reading.Timestamp.Sub(s.prevTime).Seconds()
	}

	snapshot := &Snapshot{
		Timestamp: reading.Timestamp,
		System:    s.deriveSystem(reading, elapsed),
		Processes: s.deriveProcesses(reading, elapsed),
	}

	s.retain(reading)

	return snapshot, nil
}

func (s *Sampler) deriveProcesses(reading *system.Reading, elapsed float64) []ProcessMetrics {
	metrics := make([]ProcessMetrics, 0, len(reading.Processes))

	for _, cur := range reading.Processes {
		id := ProcessIdentity{PID: cur.PID, StartTime: cur.StartTime.UnixMilli()}

		m := ProcessMetrics{
			PID:        cur.PID,
			StartTime:  cur.StartTime,
			Name:       cur.Name,
			Cmdline:    cur.Cmdline,
			Username:   cur.Username,
			Status:     statusFromRaw(cur.Status),
			MemoryRSS:  cur.MemoryRSS,
			MemoryVMS:  cur.MemoryVMS,
			NumThreads: cur.NumThreads,
			Runtime:    reading.Timestamp.Sub(cur.StartTime),
		}

		// Rates need a previous sample of the same process instance;
		// a first-seen process reports zero rates for this one tick
		if prev, ok := s.prevProcs[id]; ok && elapsed > 0 {
			m.CPUPercent = secondsRate(cur.CPUTime, prev.CPUTime, elapsed) * 100
			m.DiskReadRate = counterRate(cur.DiskReadBytes, prev.DiskReadBytes, elapsed)
			m.DiskWriteRate = counterRate(cur.DiskWriteBytes, prev.DiskWriteBytes, elapsed)
		}

		metrics = append(metrics, m)
	}

	sort.Slice(metrics, func(i, j int) bool {
		return metrics[i].CPUPercent > metrics[j].CPUPercent
	})

	return metrics
}

func (s *Sampler) deriveSystem(reading *system.Reading, elapsed float64) SystemMetrics {
	sys := SystemMetrics{
		CPU: CPUMetrics{
			Count:       reading.CPUCount,
			Temperature: reading.CPUTemp,
		},
		Memory: MemoryMetrics{
			Total:       reading.Memory.Total,
			Used:        reading.Memory.Used,
			Available:   reading.Memory.Available,
			UsedPercent: reading.Memory.UsedPercent,
			SwapTotal:   reading.Memory.SwapTotal,
			SwapUsed:    reading.Memory.SwapUsed,
		},
		GPUs:    reading.GPUs,
		Network: make(map[string]NetworkMetrics, len(reading.Network)),
		Disks:   make(map[string]DiskIOMetrics, len(reading.Disks)),
	}

	sys.CPU.PerCore, sys.CPU.UsagePercent = s.deriveCPU(reading.CPU)

	for name, cur := range reading.Network {
		nm := NetworkMetrics{
			Name:      name,
			BytesSent: cur.BytesSent,
			BytesRecv: cur.BytesRecv,
		}
		if prev, ok := s.prevNet[name]; ok && elapsed > 0 {
			nm.SentRate = counterRate(cur.BytesSent, prev.BytesSent, elapsed)
			nm.RecvRate = counterRate(cur.BytesRecv, prev.BytesRecv, elapsed)
		}
		sys.Network[name] = nm
	}

	for name, cur := range reading.Disks {
		dm := DiskIOMetrics{
			Name:       name,
			ReadBytes:  cur.ReadBytes,
			WriteBytes: cur.WriteBytes,
		}
		if prev, ok := s.prevDisks[name]; ok && elapsed > 0 {
			dm.ReadRate = counterRate(cur.ReadBytes, prev.ReadBytes, elapsed)
			dm.WriteRate = counterRate(cur.WriteBytes, prev.WriteBytes, elapsed)
		}
		sys.Disks[name] = dm
	}

	return sys
}

// deriveCPU computes per-core and overall busy percentages from cumulative
// busy/total CPU seconds. Overall usage is normalized 0-100 across cores.
func (s *Sampler) deriveCPU(cur []system.CPUTimes) ([]float64, float64) {
	perCore := make([]float64, len(cur))

	var busySum, totalSum float64
	for i, t := range cur {
		if i >= len(s.prevCPU) {
			continue
		}
		prev := s.prevCPU[i]

		busy := t.Busy - prev.Busy
		total := t.Total - prev.Total
		if busy < 0 || total <= 0 {
			continue
		}

		perCore[i] = busy / total * 100
		busySum += busy
		totalSum += total
	}

	overall := 0.0
	if totalSum > 0 {
		overall = busySum / totalSum * 100
	}

	return perCore, overall
}

// retain stores the current absolute reading as the baseline for the next
// tick; samples of exited processes are dropped with the old map.
func (s *Sampler) retain(reading *system.Reading) {
	procs := make(map[ProcessIdentity]system.ProcessSample, len(reading.Processes))
	for _, sample := range reading.Processes {
		id := ProcessIdentity{PID: sample.PID, StartTime: sample.StartTime.UnixMilli()}
		procs[id] = sample
	}

	s.prevProcs = procs
	s.prevCPU = reading.CPU
	s.prevNet = reading.Network
	s.prevDisks = reading.Disks
	s.prevTime = reading.Timestamp
}

// counterRate derives a per-second rate from two readings of a cumulative
// counter. A regression (counter reset) clamps to zero, never negative.
func counterRate(current, previous uint64, elapsed float64) float64 {
	if current < previous {
		return 0
	}
	return float64(current-previous) / elapsed
}

// secondsRate is counterRate for float64 seconds counters (CPU time)
func secondsRate(current, previous, elapsed float64) float64 {
	if current < previous {
		return 0
	}
	return (current - previous) / elapsed
}
