package version

import "runtime/debug"

var version = "dev"

// Version returns the build string. Module builds report the VCS-stamped
// version; otherwise the value injected via -ldflags (or "dev") is used.
func Version() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
		return info.Main.Version
	}
	return version
}

// Set assigns the fallback version for local builds without ldflags.
func Set(v string) {
	if v != "" {
		version = v
	}
}
