package system

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/shirou/gopsutil/v4/sensors"
)

// Collector reads raw absolute counters from the OS. It performs no rate
// derivation; every Read returns a fresh, self-contained Reading.
type Collector struct {
	gpu *GPUReader
}

// NewCollector creates a new raw counter collector
func NewCollector(gpuSysfsRoot string) *Collector {
	return &Collector{
		gpu: NewGPUReader(gpuSysfsRoot),
	}
}

// Read performs one complete read of process and system counters.
// A process enumeration failure fails the whole read; optional subsystems
// (network, disk, sensors, GPU) degrade to empty or nil instead.
func (c *Collector) Read(ctx context.Context) (*Reading, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate processes: %w", err)
	}

	samples := make([]ProcessSample, 0, len(procs))
	for _, p := range procs {
		sample, err := c.readProcess(ctx, p)
		if err != nil {
			// Process likely exited mid-read; skip it
			continue
		}
		samples = append(samples, *sample)
	}

	cpuTimes, cpuCount, err := c.readCPU(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read cpu counters: %w", err)
	}

	memory, err := c.readMemory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read memory counters: %w", err)
	}

	reading := &Reading{
		Timestamp: time.Now(),
		Processes: samples,
		CPUCount:  cpuCount,
		CPU:       cpuTimes,
		Memory:    memory,
		Network:   c.readNetwork(ctx),
		Disks:     c.readDisks(ctx),
		GPUs:      c.gpu.Read(),
		CPUTemp:   c.readCPUTemp(ctx),
	}

	return reading, nil
}

func (c *Collector) readProcess(ctx context.Context, p *process.Process) (*ProcessSample, error) {
	name, err := p.NameWithContext(ctx)
	if err != nil {
		return nil, err
	}

	createTime, err := p.CreateTimeWithContext(ctx)
	if err != nil {
		return nil, err
	}

	sample := &ProcessSample{
		PID:       p.Pid,
		StartTime: time.UnixMilli(createTime),
		Name:      name,
	}

	sample.Cmdline, _ = p.CmdlineWithContext(ctx)
	sample.Username, _ = p.UsernameWithContext(ctx)

	if status, err := p.StatusWithContext(ctx); err == nil && len(status) > 0 {
		sample.Status = status[0]
	}

	if times, err := p.TimesWithContext(ctx); err == nil {
		sample.CPUTime = times.User + times.System
	}

	if memInfo, err := p.MemoryInfoWithContext(ctx); err == nil && memInfo != nil {
		sample.MemoryRSS = memInfo.RSS
		sample.MemoryVMS = memInfo.VMS
	}

	// IO counters need elevated permissions for foreign processes; absent
	// counters stay zero and the sampler clamps any resulting deltas
	if ioc, err := p.IOCountersWithContext(ctx); err == nil && ioc != nil {
		sample.DiskReadBytes = ioc.ReadBytes
		sample.DiskWriteBytes = ioc.WriteBytes
	}

	sample.NumThreads, _ = p.NumThreadsWithContext(ctx)

	return sample, nil
}

func (c *Collector) readCPU(ctx context.Context) ([]CPUTimes, int, error) {
	perCore, err := cpu.TimesWithContext(ctx, true)
	if err != nil {
		return nil, 0, err
	}

	times := make([]CPUTimes, 0, len(perCore))
	for _, t := range perCore {
		total := t.User + t.System + t.Idle + t.Nice + t.Iowait + t.Irq + t.Softirq + t.Steal
		times = append(times, CPUTimes{
			CPU:   t.CPU,
			Busy:  total - t.Idle - t.Iowait,
			Total: total,
		})
	}

	return times, len(perCore), nil
}

func (c *Collector) readMemory(ctx context.Context) (MemoryCounters, error) {
	vmem, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemoryCounters{}, err
	}

	swap, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		// Swap might not be available
		swap = &mem.SwapMemoryStat{}
	}

	return MemoryCounters{
		Total:       vmem.Total,
		Used:        vmem.Used,
		Available:   vmem.Available,
		UsedPercent: vmem.UsedPercent,
		SwapTotal:   swap.Total,
		SwapUsed:    swap.Used,
	}, nil
}

func (c *Collector) readNetwork(ctx context.Context) map[string]NetCounters {
	counters, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil
	}

	result := make(map[string]NetCounters, len(counters))
	for _, counter := range counters {
		// Skip loopback
		if counter.Name == "lo" {
			continue
		}

		result[counter.Name] = NetCounters{
			Name:        counter.Name,
			BytesSent:   counter.BytesSent,
			BytesRecv:   counter.BytesRecv,
			PacketsSent: counter.PacketsSent,
			PacketsRecv: counter.PacketsRecv,
			Errin:       counter.Errin,
			Errout:      counter.Errout,
		}
	}

	return result
}

func (c *Collector) readDisks(ctx context.Context) map[string]DiskCounters {
	counters, err := disk.IOCountersWithContext(ctx)
	if err != nil {
		return nil
	}

	result := make(map[string]DiskCounters, len(counters))
	for name, counter := range counters {
		// Skip loop and ram pseudo devices
		if strings.HasPrefix(name, "loop") || strings.HasPrefix(name, "ram") {
			continue
		}

		result[name] = DiskCounters{
			Name:       name,
			ReadBytes:  counter.ReadBytes,
			WriteBytes: counter.WriteBytes,
			ReadCount:  counter.ReadCount,
			WriteCount: counter.WriteCount,
		}
	}

	return result
}

// readCPUTemp picks the first sensor that looks like a CPU package sensor.
// Returns nil when no thermal sensor is available.
func (c *Collector) readCPUTemp(ctx context.Context) *float64 {
	temps, err := sensors.SensorsTemperaturesWithContext(ctx)
	if err != nil || len(temps) == 0 {
		return nil
	}

	for _, t := range temps {
		key := strings.ToLower(t.SensorKey)
		if strings.Contains(key, "coretemp") || strings.Contains(key, "k10temp") ||
			strings.Contains(key, "cpu_thermal") || strings.Contains(key, "acpitz") {
			temp := t.Temperature
			return &temp
		}
	}

	return nil
}
