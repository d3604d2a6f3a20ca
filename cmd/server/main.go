// Command server runs the Aethel progression and economy engine.
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/talgya/aethel/internal/api"
	"github.com/talgya/aethel/internal/config"
	"github.com/talgya/aethel/internal/dice"
	"github.com/talgya/aethel/internal/engine"
	"github.com/talgya/aethel/internal/persistence"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	if err := db.SeedCatalog(); err != nil {
		slog.Error("failed to seed catalog", "error", err)
		os.Exit(1)
	}

	eng := engine.New(db, dice.NewSource(cfg.DiceSeed))
	if cfg.DiceSeed != 0 {
		slog.Info("dice source seeded deterministically", "seed", cfg.DiceSeed)
	}

	srv := &api.Server{
		Eng:      eng,
		Port:     cfg.Port,
		AdminKey: cfg.AdminKey,
	}
	srv.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	slog.Info("shutting down")
}
