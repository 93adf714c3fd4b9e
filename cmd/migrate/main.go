package main

import (
	"flag"
	"log/slog"
	"os"

	"showcase/internal/config"
	"showcase/internal/lib/logger/sl"
	"showcase/migrations"
)

func main() {
	dir := flag.String("dir", "up", "migration direction: up or down")
	cfg := config.MustLoad()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if cfg.Storage.DSN == "" {
		log.Error("storage.dsn is required")
		os.Exit(1)
	}

	var err error
	switch *dir {
	case "up":
		err = migrations.Up(cfg.Storage.DSN)
	case "down":
		err = migrations.Down(cfg.Storage.DSN)
	default:
		log.Error("unknown direction", slog.String("dir", *dir))
		os.Exit(1)
	}
	if err != nil {
		log.Error("migration failed", sl.Err(err))
		os.Exit(1)
	}

	log.Info("migrations applied", slog.String("dir", *dir))
}
