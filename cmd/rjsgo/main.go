// Command rjsgo is the CLI host for the embedding API described by
// internal/engine/rt: run a script file or evaluate inline source
// against a heap-backed JsEnv, with opt-in pprof and OTLP wiring.
package main

import (
	"fmt"
	"os"

	"github.com/rjsgo/rjsgo/cmd/rjsgo/cmd"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "rjsgo: internal error: %v\n", r)
			os.Exit(2)
		}
	}()
	cmd.Execute()
}
