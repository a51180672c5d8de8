// Package procutil samples running processes for display.
//
// It wraps github.com/shirou/gopsutil/v4/process, which reads /proc on Linux,
// sysctl on macOS and the BSDs, and the native process API on Windows. Processes
// that exit or deny access between listing and sampling are skipped rather than
// reported as errors.
//
// # Example Usage
//
//	pids, err := procutil.PIDs(ctx)
//	if err != nil {
//	    return err
//	}
//	var samples []procutil.Sample
//	for _, pid := range pids {
//	    if s, ok := procutil.Inspect(ctx, pid); ok {
//	        samples = append(samples, s)
//	    }
//	}
//	procutil.SortBy(samples, procutil.ByCPU)
package procutil
