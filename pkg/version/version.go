// Package version carries the build identity of the codelex binary.
package version

import "runtime/debug"

// Set with -ldflags "-X github.com/Sumatoshi-tech/codelex/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// InitBinaryVersion fills values left unset by the linker from the
// module build information.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == "none" && s.Value != "" {
				Commit = s.Value
			}
		case "vcs.time":
			if Date == "unknown" && s.Value != "" {
				Date = s.Value
			}
		}
	}
}

// String formats the build identity for `codelex version`.
func String() string {
	return "codelex " + Version + " (commit: " + Commit + ", built: " + Date + ")"
}
