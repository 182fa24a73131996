package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/replicate/mget/cmd"
	"github.com/replicate/mget/pkg/logging"
)

func main() {
	logging.SetupLogger()

	// cancelled once on the first interrupt; fetches poll it between chunks
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		stop()
		os.Exit(1)
	}
}
