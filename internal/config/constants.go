// Package config holds the small set of constants shared between
// pkg/lucid and cmd/lucid: the recognized source file extensions and the
// CLI-visible version string. Keeping them here keeps this kind of
// cross-cutting-but-not-domain constant out of both the evaluator and
// the CLI package.
package config

// Version is the current lucid version, overridable at build time via
// -ldflags "-X github.com/lucid-lang/lucid/internal/config.Version=...".
var Version = "0.1.0"

// SourceFileExt is lucid's canonical source file extension.
const SourceFileExt = ".ncl"

// SourceFileExtensions are all extensions the CLI and import resolver
// recognize as lucid source.
var SourceFileExtensions = []string{".ncl", ".lucid"}

// HasSourceExt reports whether path ends with a recognized source
// extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}
