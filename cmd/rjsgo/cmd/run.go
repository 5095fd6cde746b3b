package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rjsgo/rjsgo/internal/engine/rt"
)

var strictMode bool

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run a script file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}

		result, jsErr := env.RunStrict(args[0], strictMode)
		if jsErr != nil {
			return reportJsError(jsErr)
		}

		stats := env.Heap().Stats()
		logger.Debugf("run completed: %d gc collections, %d bytes capacity", stats.Collections, stats.BytesCapacity)
		_ = result
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&strictMode, "strict", false, "run the file as strict-mode code")
	rootCmd.AddCommand(runCmd)
}

// reportJsError translates a JsError into the CLI's exit-code contract
// (SPEC_FULL §7): a catchable script-visible error becomes a plain
// RunE error (exit code 1 via Execute's os.Exit(1)); a non-catchable
// internal fault panics so main's recover can report exit code 2.
func reportJsError(jsErr *rt.JsError) error {
	if !jsErr.Kind.Catchable() {
		panic(jsErr)
	}
	return fmt.Errorf("%s: %s", jsErr.Kind, jsErr.Message)
}
