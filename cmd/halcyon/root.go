package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "halcyon",
	Short: "Halcyon - climate planning rule resolver",
	Long: `Halcyon resolves declarative planning/impact rules written as boolean and
arithmetic condition expressions over named climate variables.

Each rule pairs an id with a condition such as "tasmean < 0 and prsn > 0".
Halcyon tokenizes, parses, and evaluates every rule independently against a
variable file, so one malformed rule never blocks the rest of the table.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
