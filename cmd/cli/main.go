// Package main is the entry point for pricing-detective CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"pricing-detective/cmd/cli/cmd"
	"pricing-detective/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Execute(ctx)
	stop()
	logging.Sync()
	if err != nil {
		os.Exit(1)
	}
}
