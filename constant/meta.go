// Package constant holds vidplay's identity and build metadata.
package constant

import _ "embed"

const (
	// App names the config, cache and runtime directories and prefixes env vars.
	App = "vidplay"

	Version = "0.3.0"
)

// Build metadata, overridden through -ldflags at release time.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)

// Banner is printed above the root command's help.
//
//go:embed ascii.txt
var Banner string

// GOOS values that `vidplay check` gives install hints for.
const (
	Darwin  = "darwin"
	Linux   = "linux"
	Windows = "windows"
)
