package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/evstack/zerog-da/apps/zgda/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.NewRootCmd().ExecuteContext(ctx); err != nil {
		// Print to stderr and exit with error
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
