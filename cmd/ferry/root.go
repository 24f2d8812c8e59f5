package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "ferry",
	Short: "Shell for the ferry object runtime and conversion protocol",
	Long: `ferry - Inspect the ferry host object runtime from the command line.

The shell evaluates literal expressions (ints, floats, strings, byte
strings, lists, tuples, dicts, sets, None/True/False), binds variables,
and exposes the runtime's protocol operations as builtins:

  len(x)   hash(x)   bool(x)   repr(x)
  iter(x)  next(it)  refs(x)   cmp(a, b)

Every value lives in a reference-counted runtime; refs(x) shows the
live count, and closing the shell reports anything leaked.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress runtime logging")
}

// newLogger builds the runtime logger from the persistent flags.
func newLogger(cmd *cobra.Command) *zap.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	quiet, _ := cmd.Flags().GetBool("quiet")

	if quiet {
		return zap.NewNop()
	}
	if debug {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return logger
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return logger
}
