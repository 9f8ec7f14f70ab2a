package system

import "time"

// HostInfo contains system identification information
type HostInfo struct {
	Hostname        string `json:"hostname"`
	OS              string `json:"os"`
	Platform        string `json:"platform"`
	PlatformVersion string `json:"platform_version"`
	KernelVersion   string `json:"kernel_version"`
	KernelArch      string `json:"kernel_arch"`
	Uptime          uint64 `json:"uptime"`
	UptimeHuman     string `json:"uptime_human"`
	BootTime        uint64 `json:"boot_time"`
	Procs           uint64 `json:"procs"`
}

// ProcessSample holds the absolute counters of one process at one instant.
// CPUTime and the disk byte counters are cumulative since process start;
// rates are derived later by diffing two samples of the same process.
type ProcessSample struct {
	PID            int32     `json:"pid"`
	StartTime      time.Time `json:"start_time"`
	Name           string    `json:"name"`
	Cmdline        string    `json:"cmdline"`
	Username       string    `json:"username"`
	Status         string    `json:"status"`
	CPUTime        float64   `json:"cpu_time"`
	MemoryRSS      uint64    `json:"memory_rss"`
	MemoryVMS      uint64    `json:"memory_vms"`
	DiskReadBytes  uint64    `json:"disk_read_bytes"`
	DiskWriteBytes uint64    `json:"disk_write_bytes"`
	NumThreads     int32     `json:"num_threads"`
}

// CPUTimes holds cumulative busy/total seconds for one logical core
type CPUTimes struct {
	CPU   string  `json:"cpu"`
	Busy  float64 `json:"busy"`
	Total float64 `json:"total"`
}

// MemoryCounters holds point-in-time memory usage
type MemoryCounters struct {
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Available   uint64  `json:"available"`
	UsedPercent float64 `json:"used_percent"`
	SwapTotal   uint64  `json:"swap_total"`
	SwapUsed    uint64  `json:"swap_used"`
}

// NetCounters holds cumulative I/O counters for one network interface
type NetCounters struct {
	Name        string `json:"name"`
	BytesSent   uint64 `json:"bytes_sent"`
	BytesRecv   uint64 `json:"bytes_recv"`
	PacketsSent uint64 `json:"packets_sent"`
	PacketsRecv uint64 `json:"packets_recv"`
	Errin       uint64 `json:"errin"`
	Errout      uint64 `json:"errout"`
}

// DiskCounters holds cumulative I/O counters for one block device
type DiskCounters struct {
	Name       string `json:"name"`
	ReadBytes  uint64 `json:"read_bytes"`
	WriteBytes uint64 `json:"write_bytes"`
	ReadCount  uint64 `json:"read_count"`
	WriteCount uint64 `json:"write_count"`
}

// DiskPartition represents one mounted filesystem and its usage
type DiskPartition struct {
	Device      string  `json:"device"`
	Mountpoint  string  `json:"mountpoint"`
	Fstype      string  `json:"fstype"`
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"used_percent"`
}

// DiskInventory contains the mounted filesystems of the host
type DiskInventory struct {
	Partitions []DiskPartition `json:"partitions"`
	Total      int             `json:"total"`
}

// GPUStats holds usage for one GPU, read from sysfs
type GPUStats struct {
	Name         string   `json:"name"`
	UsagePercent float64  `json:"usage_percent"`
	MemoryUsed   uint64   `json:"memory_used"`
	MemoryTotal  uint64   `json:"memory_total"`
	Temperature  *float64 `json:"temperature,omitempty"`
}

// Reading is one complete read of all raw counters. Optional subsystems
// (GPUs, CPUTemp) are nil when the hardware or sensor is absent.
type Reading struct {
	Timestamp time.Time                `json:"timestamp"`
	Processes []ProcessSample          `json:"processes"`
	CPUCount  int                      `json:"cpu_count"`
	CPU       []CPUTimes               `json:"cpu"`
	Memory    MemoryCounters           `json:"memory"`
	Network   map[string]NetCounters   `json:"network"`
	Disks     map[string]DiskCounters  `json:"disks"`
	GPUs      []GPUStats               `json:"gpus,omitempty"`
	CPUTemp   *float64                 `json:"cpu_temp,omitempty"`
}
