// Command citysim runs the AICity agent society simulation.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/soratane/aicity/internal/api"
	"github.com/soratane/aicity/internal/config"
	"github.com/soratane/aicity/internal/engine"
	"github.com/soratane/aicity/internal/persistence"
)

func main() {
	configPath := flag.String("config", "citysim.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// ── Database ──────────────────────────────────────────────────────
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	archive, err := persistence.NewArchive(cfg.SnapshotDir)
	if err != nil {
		slog.Error("failed to prepare snapshot dir", "error", err)
		os.Exit(1)
	}

	// ── Simulation ────────────────────────────────────────────────────
	sim := engine.New(seed, logger)
	runner := engine.NewRunner(sim, cfg.TickInterval)

	if cfg.AdminToken == "" {
		slog.Warn("admin token not set, admin endpoints disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── HTTP API ──────────────────────────────────────────────────────
	apiServer := &api.Server{
		Sim:          sim,
		Runner:       runner,
		DB:           db,
		Archive:      archive,
		Addr:         cfg.Addr,
		AdminToken:   cfg.AdminToken,
		Origins:      cfg.CORSOrigins,
		PushInterval: cfg.PushInterval,
	}
	apiServer.Start(ctx)

	// Periodic save in the background.
	go func() {
		ticker := time.NewTicker(cfg.SaveEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := db.SaveWorldState(sim.Snapshot()); err != nil {
					slog.Error("periodic save failed", "error", err)
				}
			}
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		runner.Stop()
		cancel()
	}()

	fmt.Printf("\nAICity is alive: %d citizens.\n", sim.Citizens.Count())
	fmt.Printf("API: http://localhost%s/api/status\n", cfg.Addr)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	runner.Run(ctx)

	// Final save on shutdown.
	slog.Info("final save...")
	snap := sim.Snapshot()
	if err := db.SaveWorldState(snap); err != nil {
		slog.Error("final save failed", "error", err)
	}
	if _, err := archive.Write(snap); err != nil {
		slog.Error("final snapshot archive failed", "error", err)
	}

	fmt.Println("Simulation stopped. World state saved.")
}
