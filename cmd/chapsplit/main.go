package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

func main() {
	// Set up context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// pdfcpu would otherwise create a config directory under the user's home
	api.DisableConfigDir()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
