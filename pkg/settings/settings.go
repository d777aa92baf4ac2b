// Package settings provides build metadata, runtime configuration, and
// context helpers used across the refpath CLI and library packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "refpath"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// InputSettings says where the document comes from.
type InputSettings struct {
	// Path is the input file; empty means standard input.
	Path string
	// InPlace writes mutated documents back to Path.
	InPlace bool
}

// FromStdin reports whether the document is read from standard input.
func (i InputSettings) FromStdin() bool {
	return i.Path == "" || i.Path == "-"
}

// Run holds configuration settings for a single execution of the application.
type Run struct {
	MinLogLevel int8
	Input       InputSettings
	Output      string
	NoColor     bool
	Where       string
	Limit       int
	Offset      int
	ExitOnError bool
}

// NewCliParams returns the defaults for a CLI run: info logging, YAML output
// and standard input.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		Output:      "yaml",
		ExitOnError: true,
	}
}
