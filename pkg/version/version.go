// Package version carries build metadata injected via -ldflags.
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is injected at build time via -ldflags.
	Version = "dev"
	// BuildTime is injected at build time via -ldflags.
	BuildTime = "unknown"
	// GitCommit is injected at build time via -ldflags.
	GitCommit = "unknown"
)

const appName = "venuescout"

// GetFullVersion returns a user-facing build string.
func GetFullVersion() string {
	if Version == "dev" {
		return fmt.Sprintf("%s/%s (commit: %s, built: %s, %s)", appName, Version, GitCommit, BuildTime, runtime.Version())
	}
	return fmt.Sprintf("%s/%s", appName, Version)
}

// UserAgent is sent with outgoing HTTP requests that identify the tool.
func UserAgent() string {
	return appName + "/" + Version
}
