// Package config holds process-wide constants and defaults shared by
// internal/projectfile and cmd/lambdapi, grounded on
// funxy's internal/config/constants.go.
package config

// Version is the current lambdapi version.
var Version = "0.1.0"

const SourceFileExt = ".lpi"

// SourceFileExtensions are all recognised source file extensions.
var SourceFileExtensions = []string{".lpi", ".lambdapi"}

// TrimSourceExt removes a recognised source extension from name.
// Returns name unchanged if no extension matches.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt reports whether path ends with a recognised source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// DefaultStepBudget is the eval step budget (Design Notes 9) used
// when a project file does not override it.
const DefaultStepBudget = 10000

// ProjectFileName is the optional project configuration file
// internal/projectfile looks for at the workspace root.
const ProjectFileName = "lambdapi.yaml"

// IsTestMode mirrors funxy's config.IsTestMode. cmd/lambdapi has no
// test subcommand and nothing in this module sets it.
var IsTestMode = false
