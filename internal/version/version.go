// Package version provides application version information.
// Both values can be set at build time using ldflags:
//
//	go build -ldflags "-X github.com/guibruno93/lorcana-companion/internal/version.Version=v0.3.0"
package version

import "fmt"

// Version is the application version. It defaults to "dev".
var Version = "dev"

// Commit is the source revision the binary was built from.
var Commit = ""

// String returns the version with the commit appended when known.
func String() string {
	if Commit == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, Commit)
}
