package createadmin

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/heavensy/admin-service/internal/config"
	"github.com/heavensy/admin-service/internal/model"
	registrystore "github.com/heavensy/admin-service/internal/registry/store"
	"github.com/urfave/cli/v3"

	_ "github.com/heavensy/admin-service/internal/plugin/store/mongo"
)

// Command returns the create-admin sub-command. It bootstraps the first
// administrator account so the dashboard can be logged into on a fresh
// deployment.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "create-admin",
		Usage: "Create the initial administrator account",
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
			&cli.StringFlag{
				Name:  "username",
				Usage: "Administrator username",
				Value: "admin",
			},
			&cli.StringFlag{
				Name:     "password",
				Sources:  cli.EnvVars("ADMIN_SERVICE_ADMIN_PASSWORD"),
				Usage:    "Administrator password",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "email",
				Usage: "Administrator email address",
				Value: "admin@heavensy.com",
			},
			&cli.StringFlag{
				Name:  "first-name",
				Usage: "Administrator first name",
				Value: "Super",
			},
			&cli.StringFlag{
				Name:  "last-name",
				Usage: "Administrator last name",
				Value: "Admin",
			},
			&cli.StringFlag{
				Name:  "company-id",
				Usage: "Company the administrator belongs to",
				Value: "HEAVENSY_001",
			},
			&cli.StringFlag{
				Name:  "role",
				Usage: "Role granted on the company",
				Value: "ADMIN_ROL",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.DefaultConfig()
			cfg.DBURL = cmd.String("db-url")
			cfg.DBName = cmd.String("db-name")
			cfg.DatastoreType = cmd.String("db-kind")
			ctx = config.WithContext(ctx, &cfg)

			storeLoader, err := registrystore.Select(cfg.DatastoreType)
			if err != nil {
				return err
			}
			store, err := storeLoader(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(context.Background()); err != nil {
					log.Warn("Failed to close store", "err", err)
				}
			}()

			username := cmd.String("username")
			password := cmd.String("password")
			user, err := store.CreateUser(ctx, registrystore.CreateUserRequest{
				Username:  username,
				Password:  password,
				Email:     cmd.String("email"),
				FirstName: cmd.String("first-name"),
				LastName:  cmd.String("last-name"),
				Companies: []model.CompanyAssignment{{
					CompanyID: cmd.String("company-id"),
					Roles:     []string{cmd.String("role")},
					IsPrimary: true,
				}},
			})
			if err != nil {
				var conflict *registrystore.ConflictError
				if errors.As(err, &conflict) {
					// Existing account: report whether the supplied password
					// already works so operators know if a reset is needed.
					ok, verr := store.VerifyUserPassword(ctx, username, password)
					if verr != nil {
						return verr
					}
					if ok {
						log.Info("Administrator already exists; supplied password is valid", "username", username)
					} else {
						log.Warn("Administrator already exists; supplied password does NOT match", "username", username)
					}
					return nil
				}
				return err
			}

			log.Info("Administrator created", "username", user.Username, "email", user.Email)
			return nil
		},
	}
}
