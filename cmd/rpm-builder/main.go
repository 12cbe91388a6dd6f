package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ralt/rpm-builder/internal/cli"
	"github.com/sirupsen/logrus"
)

func main() {
	// Setup logging format
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// An interrupted build leaves no partial output behind
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		logrus.Error(err)
		stop()
		os.Exit(1)
	}
}
