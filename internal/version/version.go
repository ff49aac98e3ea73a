// Package version exposes build metadata stamped via ldflags, e.g.:
//
//	go build -ldflags "-X github.com/VpkPrasanna/deepgram-go/internal/version.Version=0.2.0 \
//	                   -X github.com/VpkPrasanna/deepgram-go/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/VpkPrasanna/deepgram-go/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import "fmt"

var (
	// Version is the semantic version.
	Version = "dev"

	// Commit is the short git commit hash.
	Commit = "unknown"

	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// String formats the stamped metadata for --version output.
func String() string {
	return fmt.Sprintf("%s (%s) built %s", Version, Commit, BuildTime)
}
