// Command logbar demonstrates interleaving log lines, column tables and concurrent
// progress bars on one terminal.
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd(newApp()).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
