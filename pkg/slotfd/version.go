package slotfd

import "runtime"

// Version represents the current version of slotfd.
const Version = "0.3.0"

// Build metadata, set with -ldflags "-X github.com/gitrdm/slotfd/pkg/slotfd.GitCommit=...".
var (
	GitCommit string
	BuildDate string
)

// VersionInfo provides detailed version information.
type VersionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}

// GetVersionInfo returns detailed version information.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GoVersion: runtime.Version(),
		GitCommit: GitCommit,
		BuildDate: BuildDate,
	}
}
