// Package version holds build information for the logbar binary and a reusable
// version command.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Info holds version information for a binary.
type Info struct {
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
	GitCommit string `json:"gitCommit"`
	GoVersion string `json:"goVersion"`
	Name      string `json:"name"`
}

// New creates a new Info with default values. Version, BuildDate and GitCommit are
// expected to be set via ldflags at build time; a missing commit falls back to the
// VCS revision stamped by the Go toolchain.
func New(name string) *Info {
	info := &Info{
		Version:   "0.0.0-dev",
		BuildDate: "unknown",
		GitCommit: "unknown",
		GoVersion: runtime.Version(),
		Name:      name,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				info.GitCommit = s.Value
			case "vcs.time":
				info.BuildDate = s.Value
			}
		}
	}
	return info
}

// String returns a human-readable version string.
func (i *Info) String() string {
	return fmt.Sprintf("%s version %s (commit: %s, built: %s)", i.Name, i.Version, i.GitCommit, i.BuildDate)
}
