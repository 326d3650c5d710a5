package migrate

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/heavensy/admin-service/internal/config"
	registrymigrate "github.com/heavensy/admin-service/internal/registry/migrate"
	"github.com/urfave/cli/v3"

	// Import plugins to trigger init() registration of their migrators.
	// Store plugins register their own migrators alongside their primary interface.
	_ "github.com/heavensy/admin-service/internal/plugin/store/mongo"
)

// Command returns the migrate sub-command.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create collections and indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db-url",
				Sources:  cli.EnvVars("ADMIN_SERVICE_DB_URL"),
				Usage:    "Database connection URL",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "db-name",
				Sources: cli.EnvVars("ADMIN_SERVICE_DB_NAME"),
				Usage:   "Database name",
				Value:   config.DefaultConfig().DBName,
			},
			&cli.StringFlag{
				Name:    "db-kind",
				Sources: cli.EnvVars("ADMIN_SERVICE_DB_KIND"),
				Usage:   "Store backend (mongo)",
				Value:   "mongo",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.DefaultConfig()
			cfg.DBURL = cmd.String("db-url")
			cfg.DBName = cmd.String("db-name")
			cfg.DatastoreType = cmd.String("db-kind")
			ctx = config.WithContext(ctx, &cfg)

			log.Info("Running migrations...")
			if err := registrymigrate.RunAll(ctx); err != nil {
				return err
			}
			log.Info("All migrations completed successfully")
			return nil
		},
	}
}
