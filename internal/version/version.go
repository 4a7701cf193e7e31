// Package version holds build metadata injected via ldflags:
//
//	-X github.com/HerbHall/tradeboard/internal/version.Version=1.2.0
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Name is the product name reported by the CLI and the health endpoint.
const Name = "tradeboard"

// Info is the one-line banner printed by `tradeboard version`.
func Info() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, go: %s)",
		Name, Version, GitCommit, BuildDate, runtime.Version())
}

// Short returns the bare version, e.g. "1.2.0" or "dev".
func Short() string {
	return Version
}

// UserAgent identifies the list client to servers.
func UserAgent() string {
	return Name + "/" + Version
}

// Map returns build metadata for JSON responses.
func Map() map[string]string {
	return map[string]string{
		"version":    Version,
		"git_commit": GitCommit,
		"build_date": BuildDate,
		"go_version": runtime.Version(),
		"platform":   runtime.GOOS + "/" + runtime.GOARCH,
	}
}
