// Package version carries build-time identification for the dmerge CLI.
// Version and GitCommit are meant to be overridden at build time via
// -ldflags "-X github.com/sardonyx-sard/dmerge/pkg/version.Version=...".
package version

import "fmt"

var (
	Version   = "dev"
	GitCommit = "HEAD"
)

// FriendlyVersion renders a version string for --version output and the
// root command's cobra.Command.Version field.
func FriendlyVersion() string {
	if Version == "dev" {
		return fmt.Sprintf("dev (%s)", GitCommit)
	}
	return fmt.Sprintf("%s (%s)", Version, GitCommit)
}
