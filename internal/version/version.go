// Package version carries the build metadata stamped in by the release build:
//
//	go build -ldflags "-X github.com/cityhealth/directory/internal/version.Version=v1.2.0 ..."
package version

import "fmt"

//nolint:revive,gochecknoglobals // overwritten through -ldflags -X
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the metadata for --version output, e.g. "v1.2.0 (commit abc1234, built 2026-03-01)".
func String() string {
	commit := Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("%s (commit %s, built %s)", Version, commit, Date)
}
