package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/greenloop-ai/ecoscan/internal/config"
	"github.com/greenloop-ai/ecoscan/internal/logging"
	"github.com/greenloop-ai/ecoscan/internal/server"
	"github.com/greenloop-ai/ecoscan/pkg/ecoscan"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	catalogPath := flag.String("catalog", "", "path to an environmental-impact catalog YAML file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	opts := []ecoscan.Option{ecoscan.WithLogger(logger)}
	if *catalogPath != "" {
		opts = append(opts, ecoscan.WithCatalogFile(*catalogPath))
	}

	svc, err := ecoscan.New(cfg, opts...)
	if err != nil {
		logger.Fatal("failed to create service", zap.Error(err))
	}
	defer svc.Close()

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	go svc.RunJanitor(ctx)

	// Warm-up failures are not fatal: the first request retries the load
	// and the health endpoint reports the state meanwhile.
	if err := svc.WarmUp(ctx); err != nil {
		logger.Warn("model warm-up failed, service starting cold", zap.Error(err))
	}

	srv := server.New(svc, cfg, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Fatal("http server error", zap.Error(err))
	}
}
