// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package procutil

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// Sample is a point-in-time view of one process.
type Sample struct {
	PID        int32
	Name       string
	CPU        float64 // percent of one core since the process started
	RSS        uint64  // resident set size in bytes
	MemPercent float32
}

// Order names a sort key for SortBy.
type Order string

const (
	ByCPU    Order = "cpu"
	ByMemory Order = "mem"
	ByPID    Order = "pid"
	ByName   Order = "name"
)

// ParseOrder maps a flag value onto an Order.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case ByCPU, ByMemory, ByPID, ByName:
		return o, nil
	default:
		return "", fmt.Errorf("unknown sort order %q (available: cpu, mem, pid, name)", s)
	}
}

// IsProcessRunning checks if a process with the given PID is running.
func IsProcessRunning(pid int) bool {
	if pid <= 0 || pid > int(^uint32(0)>>1) {
		return false
	}
	ok, err := process.PidExists(int32(pid))
	return err == nil && ok
}

// PIDs lists the ids of all running processes.
func PIDs(ctx context.Context) ([]int32, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}
	return pids, nil
}

// Inspect samples pid. It reports false when the process is gone or its name
// cannot be read; the remaining fields are best effort and stay zero on error.
func Inspect(ctx context.Context, pid int32) (Sample, bool) {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return Sample{}, false
	}
	name, err := p.NameWithContext(ctx)
	if err != nil {
		return Sample{}, false
	}

	s := Sample{PID: pid, Name: name}
	if cpu, err := p.CPUPercentWithContext(ctx); err == nil {
		s.CPU = cpu
	}
	if mem, err := p.MemoryInfoWithContext(ctx); err == nil && mem != nil {
		s.RSS = mem.RSS
	}
	if pct, err := p.MemoryPercentWithContext(ctx); err == nil {
		s.MemPercent = pct
	}
	return s, true
}

// SortBy orders samples in place. CPU and memory sort descending; pid and name ascending.
func SortBy(samples []Sample, order Order) {
	slices.SortStableFunc(samples, func(a, b Sample) int {
		switch order {
		case ByCPU:
			return cmp.Compare(b.CPU, a.CPU)
		case ByMemory:
			return cmp.Compare(b.RSS, a.RSS)
		case ByName:
			return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		default:
			return cmp.Compare(a.PID, b.PID)
		}
	})
}

// FormatBytes renders n with a binary unit suffix, e.g. "12.5 MiB".
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
