// Command lucid is the CLI driver: a thin spf13/cobra command tree over
// pkg/lucid's Session, one file per subcommand sharing a package-level
// rootCmd.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lucid-lang/lucid/internal/config"
	"github.com/lucid-lang/lucid/internal/diag"
	"github.com/lucid-lang/lucid/pkg/lucid"
)

var rootCmd = &cobra.Command{
	Use:   "lucid",
	Short: "lucid evaluates a lazy, contract-checked configuration language",
	Long: "lucid is an interpreter for a purely functional, lazily evaluated\n" +
		"configuration language with first-class records, structural enums,\n" +
		"string interpolation, and a contract system that blames whichever\n" +
		"party is responsible when a value fails a run-time check.",
	Version:       config.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// errReported marks an error a subcommand has already rendered as a
// structured diagnostic, so main doesn't print it a second time.
var errReported = errors.New("diagnostic reported")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// reportDiagnostic classifies err through the session and renders it to
// stderr with source positions (colorized on a real terminal), returning
// the sentinel main recognizes as already handled.
func reportDiagnostic(sess *lucid.Session, err error) error {
	diag.NewRenderer(os.Stderr, sess.SourceMap(), nil).Render(sess.Diagnose(err))
	return errReported
}

// importRootOf roots a Session's import resolution at the directory
// containing path, so that `import "sibling.ncl"` inside a file resolves
// relative to that file rather than to the CLI's own working directory.
func importRootOf(path string) string {
	return filepath.Dir(path)
}
