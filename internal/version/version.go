// Package version carries build-time version metadata injected via ldflags.
package version

import "fmt"

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// String returns a single-line version description.
func String() string {
	return fmt.Sprintf("docr %s (commit: %s, built: %s)", Version, GitCommit, BuildDate)
}
