// Command migrate applies the embedded schema migrations. Usage:
//
//	migrate [up|down|status]
//
// The database URL comes from DATABASE_URL (or DB_URL), optionally via .env.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/rsharma-dev/leadbook/internal/config"
	"github.com/rsharma-dev/leadbook/internal/logging"
	"github.com/rsharma-dev/leadbook/migrations"
)

func main() {
	_ = godotenv.Overload()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		slog.Error("failed to set goose dialect", "error", err)
		os.Exit(1)
	}

	switch command {
	case "up":
		err = goose.UpContext(ctx, db, ".")
	case "down":
		err = goose.DownContext(ctx, db, ".")
	case "status":
		err = goose.StatusContext(ctx, db, ".")
	default:
		slog.Error("unknown command", "command", command)
		os.Exit(1)
	}
	if err != nil {
		slog.Error("migration failed", "command", command, "error", err)
		os.Exit(1)
	}

	slog.Info("migrations applied", "command", command)
}
