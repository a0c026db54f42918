// Package version holds build metadata injected at link time.
package version

// Build metadata, set with -ldflags "-X github.com/Sumatoshi-tech/flowdeck/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String formats the build metadata for display.
func String() string {
	return Version + " (commit: " + Commit + ", built: " + Date + ")"
}
