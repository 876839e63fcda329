// Command storectl runs operator tasks against the store database.
package main

import (
	"context"
	"fmt"
	"os"

	"techstore/internal/config"
	"techstore/internal/database"
	"techstore/internal/logger"
	"techstore/internal/seed"
	"techstore/internal/server"
	"techstore/internal/service"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	log := logger.NewForWriter(cfg.Server.Env, os.Stderr)
	defer log.Sync()

	app := newApp(cfg, log)
	if err := app.Run(os.Args); err != nil {
		log.Error("Command failed", zap.Error(err))
		os.Exit(1)
	}
}

func newApp(cfg *config.Config, log *zap.Logger) *cli.App {
	return &cli.App{
		Name:  "storectl",
		Usage: "manage the tech store database",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "apply or inspect schema migrations",
				Subcommands: []*cli.Command{
					{
						Name:  "up",
						Usage: "apply all pending migrations",
						Action: withDB(cfg, func(c *cli.Context, db database.Service) error {
							return database.RunMigrations(db.DB(), log)
						}),
					},
					{
						Name:  "down",
						Usage: "roll back the latest migration",
						Action: withDB(cfg, func(c *cli.Context, db database.Service) error {
							return database.RollbackMigration(db.DB(), log)
						}),
					},
					{
						Name:  "status",
						Usage: "print applied and pending migrations",
						Action: withDB(cfg, func(c *cli.Context, db database.Service) error {
							return database.GetMigrationStatus(db.DB())
						}),
					},
				},
			},
			{
				Name:  "seed",
				Usage: "create the default accounts, categories and products",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "migrate", Value: true, Usage: "apply migrations first"},
				},
				Action: withDB(cfg, func(c *cli.Context, db database.Service) error {
					if c.Bool("migrate") {
						if err := database.RunMigrations(db.DB(), log); err != nil {
							return err
						}
					}

					repos := service.NewRepositories(db.DB())
					services := service.NewServices(repos, server.TokenSettings(cfg.JWT), log)
					res, err := seed.NewSeeder(services.Accounts, repos.Accounts, repos.Categories, services.Catalog, log).
						Run(c.Context)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "accounts=%d categories=%d products=%d\n", res.Accounts, res.Categories, res.Products)
					return nil
				}),
			},
			{
				Name:      "hash-password",
				Usage:     "print the bcrypt hash of a password",
				ArgsUsage: "<password>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("expected exactly one password argument", 2)
					}
					hash, err := service.HashPassword(c.Args().First())
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, hash)
					return nil
				},
			},
		},
	}
}

// withDB opens the database for the duration of one command.
func withDB(cfg *config.Config, fn func(c *cli.Context, db database.Service) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		ctx := c.Context
		if ctx == nil {
			ctx = context.Background()
		}
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		return fn(c, db)
	}
}
