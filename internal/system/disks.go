package system

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/disk"
)

// GetDiskPartitions retrieves mounted filesystems and their usage
func GetDiskPartitions(ctx context.Context) (*DiskInventory, error) {
	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get disk partitions: %w", err)
	}

	var result []DiskPartition
	for _, p := range partitions {
		// Skip pseudo filesystems
		if p.Fstype == "squashfs" || p.Fstype == "tmpfs" || p.Fstype == "devtmpfs" {
			continue
		}

		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			continue
		}

		result = append(result, DiskPartition{
			Device:      p.Device,
			Mountpoint:  p.Mountpoint,
			Fstype:      p.Fstype,
			Total:       usage.Total,
			Used:        usage.Used,
			Free:        usage.Free,
			UsedPercent: usage.UsedPercent,
		})
	}

	return &DiskInventory{
		Partitions: result,
		Total:      len(result),
	}, nil
}
