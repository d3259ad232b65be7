package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lucid-lang/lucid/internal/config"
	"github.com/lucid-lang/lucid/internal/serialize"
	"github.com/lucid-lang/lucid/pkg/lucid"
)

var evalCmd = &cobra.Command{
	Use:   "eval FILE",
	Short: "evaluate a lucid source file and print its fully forced value as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !config.HasSourceExt(args[0]) {
			return fmt.Errorf("lucid eval: %q is not a lucid source file (want one of %v)", args[0], config.SourceFileExtensions)
		}
		source, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("lucid eval: %w", err)
		}
		sess := lucid.NewSession(lucid.WithImportRoot(importRootOf(args[0])))
		text, err := sess.Export(string(source), serialize.JSON)
		if err != nil {
			return reportDiagnostic(sess, err)
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
}
