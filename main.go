package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/heavensy/admin-service/internal/cmd/createadmin"
	"github.com/heavensy/admin-service/internal/cmd/migrate"
	"github.com/heavensy/admin-service/internal/cmd/serve"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "admin-service",
		Usage: "Admin backend for the Heavensy messaging platform",
		Commands: []*cli.Command{
			serve.Command(),
			migrate.Command(),
			createadmin.Command(),
		},
	}
	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
