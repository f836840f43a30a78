// Package version exposes the build version stamped into the binary.
package version

// version is overridden at build time via
// -ldflags "-X github.com/rshade/memocache/pkg/version.version=v1.2.3".
//
//nolint:gochecknoglobals // Set by the linker.
var version = "dev"

// GetVersion returns the version stamped into the binary.
func GetVersion() string {
	return version
}
