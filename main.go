package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/ngenohkevin/procwatch-agent/config"
	"github.com/ngenohkevin/procwatch-agent/internal/monitor"
	"github.com/ngenohkevin/procwatch-agent/internal/server"
	"github.com/ngenohkevin/procwatch-agent/internal/system"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if !cfg.AuthEnabled() {
		log.Printf("⚠️  No API key configured - the API is unauthenticated")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := system.NewCollector(cfg.GPUSysfsRoot)
	mon := monitor.New(collector, monitor.DefaultRules(), cfg.TickInterval, cfg.AlertHistorySize)

	go mon.Run(ctx)

	srv := server.New(cfg, mon)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
