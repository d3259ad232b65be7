package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt FILE",
	Short: "reformat a lucid source file (not yet implemented)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("lucid fmt: not yet implemented")
	},
}

func init() {
	rootCmd.AddCommand(fmtCmd)
}
