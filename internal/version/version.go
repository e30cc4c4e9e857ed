// Package version carries build metadata injected with -ldflags.
package version

var (
	// Version is the release tag, e.g. "1.0.0"
	Version = "dev"
	// Commit is the git commit hash
	Commit = "dev"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// Info is the build metadata in a JSON-friendly shape
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

// Get returns the current build metadata
func Get() Info {
	return Info{Version: Version, Commit: Commit, BuildTime: BuildTime}
}

// String renders the metadata on one line for CLI output
func (i Info) String() string {
	return i.Version + " (commit " + i.Commit + ", built " + i.BuildTime + ")"
}
