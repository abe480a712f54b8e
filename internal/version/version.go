// Package version holds build metadata injected via ldflags:
//
//	go build -ldflags "-X github.com/kailas-cloud/notegraph/internal/version.Version=v1.2.0"
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build as "notegraph <version> (<commit>, <date>)".
func String() string {
	return fmt.Sprintf("notegraph %s (%s, %s)", Version, Commit, Date)
}
