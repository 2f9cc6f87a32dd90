package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"genforge/internal/config"
	"genforge/internal/runstore"
	"genforge/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generation API over HTTP",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Env)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	models, err := buildModels(cmd, cfg)
	if err != nil {
		return err
	}
	runs, artifacts, err := serveStores(cfg)
	if err != nil {
		return err
	}
	if runs != nil {
		defer func() { _ = runs.Close() }()
	}

	handler := server.NewHandler(newCoordinator(cfg, models), runs, artifacts, logger)
	srv := server.New(cfg.ListenAddr, handler.Routes(), logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

// serveStores builds the persistence backends for the API server. Unlike
// the one-shot CLI path, the memory backend is real here: the server
// outlives its runs.
func serveStores(cfg *config.Config) (runstore.Store, runstore.ArtifactStore, error) {
	switch cfg.Store.Backend {
	case "memory":
		return runstore.NewMemory(), runstore.NewMemoryArtifacts(), nil
	case "postgres":
		pg, err := runstore.NewPostgres(cfg.Store.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return pg, runstore.PostgresArtifacts{Postgres: pg}, nil
	case "s3":
		s3, err := runstore.NewS3(cfg.Store.S3)
		if err != nil {
			return nil, nil, err
		}
		return runstore.NewMemory(), s3, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
