// Package version reports build information set at link time.
package version

import "runtime/debug"

// Set with -ldflags "-X github.com/harshdoesdev/instance-monitor/internal/version.version=v1.2.3".
var version = ""

// String returns the release version, the module version from build info,
// or "dev".
func String() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}
