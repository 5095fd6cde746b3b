package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rjsgo/rjsgo/internal/engine/rt"
)

var evalCmd = &cobra.Command{
	Use:   "eval <source>",
	Short: "Evaluate an inline script expression",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}

		result, jsErr := env.Eval(args[0])
		if jsErr != nil {
			return reportJsError(jsErr)
		}

		fmt.Println(displayValue(env, result))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
}

// displayValue renders result for the eval command's stdout line. It is
// not ECMAScript's ToString (no valueOf/toString method dispatch): the
// interpreter layer that would make that call doesn't exist yet, so
// this is a best-effort host-side inspection of the primitive cases.
func displayValue(env *rt.JsEnv, v rt.Value) string {
	switch v.Ty() {
	case rt.TypeUndefined:
		return "undefined"
	case rt.TypeNull:
		return "null"
	case rt.TypeBoolean:
		if v.BoolValue() {
			return "true"
		}
		return "false"
	case rt.TypeNumber:
		return rt.FormatNumber(v.NumberValue())
	case rt.TypeString:
		return rt.FromStringAddr(v.Addr()).Go(env.Heap().Space())
	case rt.TypeObject:
		return "[object Object]"
	default:
		return fmt.Sprintf("<%s>", v.Ty())
	}
}
