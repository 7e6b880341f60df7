package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/scriptsmith/internal/cmd"
	"github.com/felixgeelhaar/scriptsmith/internal/exitcode"
	"github.com/felixgeelhaar/scriptsmith/internal/tui"
)

func main() {
	// Create a context that listens for interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		exitcode.Exit(exitcode.Success)
	}

	// Check if error was due to context cancellation (e.g., Ctrl+C)
	if ctx.Err() == context.Canceled {
		fmt.Fprintln(os.Stderr, "\nOperation cancelled by user")
		exitcode.Exit(exitcode.Interrupted)
	}

	// the verdict has already been printed
	if !stderrors.Is(err, exitcode.ErrNeedsUpdate) {
		styles := tui.DefaultStyles()
		if os.Getenv("NO_COLOR") != "" {
			styles = tui.PlainStyles()
		}
		fmt.Fprintln(os.Stderr, tui.RenderError(err, styles))
	}
	exitcode.ExitWithError(err)
}
