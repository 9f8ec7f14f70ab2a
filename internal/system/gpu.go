package system

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// GPUReader reads GPU usage from the DRM sysfs tree. Supported on AMD GPUs
// exposing gpu_busy_percent; returns nil on hosts without one.
type GPUReader struct {
	root string
}

// NewGPUReader creates a GPU reader rooted at the given sysfs directory
// (normally /sys/class/drm)
func NewGPUReader(root string) *GPUReader {
	return &GPUReader{root: root}
}

// Read returns stats for every detected GPU, or nil when none is found
func (g *GPUReader) Read() []GPUStats {
	entries, err := os.ReadDir(g.root)
	if err != nil {
		return nil
	}

	var gpus []GPUStats
	for _, entry := range entries {
		name := entry.Name()
		// cardN entries only; cardN-<connector> entries are display outputs
		if !strings.HasPrefix(name, "card") || strings.Contains(name, "-") {
			continue
		}

		if gpu, ok := g.readCard(filepath.Join(g.root, name)); ok {
			gpus = append(gpus, gpu)
		}
	}

	return gpus
}

func (g *GPUReader) readCard(cardPath string) (GPUStats, bool) {
	devicePath := filepath.Join(cardPath, "device")

	usage, err := readSysfsUint(filepath.Join(devicePath, "gpu_busy_percent"))
	if err != nil {
		return GPUStats{}, false
	}

	name := readSysfsString(filepath.Join(devicePath, "product_name"))
	if name == "" {
		name = readSysfsString(filepath.Join(devicePath, "model"))
	}
	if name == "" {
		name = "Unknown GPU"
	}

	memUsed, _ := readSysfsUint(filepath.Join(devicePath, "mem_info_vram_used"))
	memTotal, _ := readSysfsUint(filepath.Join(devicePath, "mem_info_vram_total"))

	return GPUStats{
		Name:         name,
		UsagePercent: float64(usage),
		MemoryUsed:   memUsed,
		MemoryTotal:  memTotal,
		Temperature:  g.readTemp(devicePath),
	}, true
}

// readTemp looks for a hwmon temperature sensor under the device directory.
// Values are reported in millidegrees.
func (g *GPUReader) readTemp(devicePath string) *float64 {
	for _, hwmon := range []string{"hwmon/hwmon0", "hwmon/hwmon1"} {
		raw, err := readSysfsUint(filepath.Join(devicePath, hwmon, "temp1_input"))
		if err != nil {
			continue
		}
		temp := float64(raw) / 1000.0
		return &temp
	}
	return nil
}

func readSysfsString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func readSysfsUint(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
}
