package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"podsculpt/internal/config"
	"podsculpt/internal/daemon"
	"podsculpt/internal/logging"
	"podsculpt/internal/queue"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	flag.Parse()

	// Secrets may live in a local .env during development; a missing file
	// is not an error.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		return
	}

	manager, clips, err := buildWorkflow(cfg, store, logger)
	if err != nil {
		logger.Error("build workflow", logging.Error(err))
		_ = store.Close()
		return
	}

	d, err := daemon.New(cfg, store, logger, manager, clips)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = store.Close()
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("podsculptd shutting down")
}
