package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/smartplan/internal/cmd"
	"github.com/felixgeelhaar/smartplan/internal/exitcode"
	"github.com/felixgeelhaar/smartplan/internal/ux"
)

func main() {
	// Create a context that listens for interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		if ctx.Err() == context.Canceled {
			fmt.Fprintln(os.Stderr, "\nOperation cancelled by user")
			stop()
			exitcode.Exit(exitcode.Interrupted)
		}

		ux.RenderError(os.Stderr, err, os.Getenv("NO_COLOR") != "")
		stop()
		exitcode.ExitWithError(err)
	}
}
