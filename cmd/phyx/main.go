// Command phyx evaluates calculator documents of physical quantities.
//
// Usage:
//
//	phyx [file]
//	phyx eval [file...]
//	phyx repl
//	phyx watch file
//	phyx plot [file] --expr E --var x --from A --to B
//	phyx info file name
//	phyx units
//	phyx config path|show|init
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
