// Command migrate applies or rolls back the embedded catalog_tags schema.
//
//	migrate up       apply every pending migration
//	migrate down     roll back to an empty schema
//	migrate status   list migrations and whether they are applied
//
// The database is taken from DATABASE_URL or --database-url.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/pkordes/catalog-tags/migrations"
)

// Context is handed to every subcommand's Run method.
type Context struct {
	Provider *goose.Provider
	Log      *slog.Logger
}

var cli struct {
	DatabaseURL string `help:"Postgres connection string." env:"DATABASE_URL" required:""`

	Up     UpCmd     `cmd:"" help:"Apply all pending migrations."`
	Down   DownCmd   `cmd:"" help:"Roll back every migration."`
	Status StatusCmd `cmd:"" help:"Show migration status."`
}

func main() {
	ctx := kong.Parse(&cli)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := sql.Open("pgx", cli.DatabaseURL)
	ctx.FatalIfErrorf(err)
	defer db.Close()

	provider, err := migrations.NewProvider(db)
	ctx.FatalIfErrorf(err)

	err = ctx.Run(&Context{Provider: provider, Log: logger})
	ctx.FatalIfErrorf(err)
}

type UpCmd struct{}

func (c *UpCmd) Run(ctx *Context) error {
	results, err := ctx.Provider.Up(context.Background())
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	for _, r := range results {
		ctx.Log.Info("migration applied", "version", r.Source.Version, "duration", r.Duration)
	}
	if len(results) == 0 {
		ctx.Log.Info("no pending migrations")
	}
	return nil
}

type DownCmd struct{}

func (c *DownCmd) Run(ctx *Context) error {
	results, err := ctx.Provider.DownTo(context.Background(), 0)
	if err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	for _, r := range results {
		ctx.Log.Info("migration rolled back", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *Context) error {
	statuses, err := ctx.Provider.Status(context.Background())
	if err != nil {
		return fmt.Errorf("migrate status: %w", err)
	}
	for _, s := range statuses {
		ctx.Log.Info("migration",
			"version", s.Source.Version,
			"path", s.Source.Path,
			"state", string(s.State),
			"applied_at", s.AppliedAt,
		)
	}
	return nil
}
