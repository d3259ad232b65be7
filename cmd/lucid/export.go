package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lucid-lang/lucid/internal/config"
	"github.com/lucid-lang/lucid/internal/serialize"
	"github.com/lucid-lang/lucid/pkg/lucid"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "evaluate a lucid source file and export it as json, yaml, or toml",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := parseFormat(exportFormat)
		if err != nil {
			return err
		}
		if !config.HasSourceExt(args[0]) {
			return fmt.Errorf("lucid export: %q is not a lucid source file (want one of %v)", args[0], config.SourceFileExtensions)
		}
		source, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("lucid export: %w", err)
		}
		sess := lucid.NewSession(lucid.WithImportRoot(importRootOf(args[0])))
		text, err := sess.Export(string(source), format)
		if err != nil {
			return reportDiagnostic(sess, err)
		}
		fmt.Println(text)
		return nil
	},
}

func parseFormat(s string) (lucid.Format, error) {
	switch s {
	case "json":
		return serialize.JSON, nil
	case "yaml":
		return serialize.YAML, nil
	case "toml":
		return serialize.TOML, nil
	default:
		return "", fmt.Errorf("lucid export: unknown format %q (want json, yaml, or toml)", s)
	}
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format: json, yaml, or toml")
	rootCmd.AddCommand(exportCmd)
}
