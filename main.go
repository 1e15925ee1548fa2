package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"scorecard/cmd"

	log "github.com/sirupsen/logrus"
)

func main() {
	// Cancel the run on interrupt; the ledger still records the failure
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		log.WithError(err).Error("Command failed")
		stop()
		os.Exit(1)
	}
}
