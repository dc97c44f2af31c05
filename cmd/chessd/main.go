package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	appcfg "github.com/kapu/chess-duel-go/internal/config"
	"github.com/kapu/chess-duel-go/internal/engine"
	"github.com/kapu/chess-duel-go/internal/httpapi"
	"github.com/kapu/chess-duel-go/internal/obslog"
	"github.com/kapu/chess-duel-go/internal/render"
	"github.com/kapu/chess-duel-go/internal/rules"
	"github.com/kapu/chess-duel-go/internal/service/game"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	sup, err := engine.NewSupervisor(engine.Config{
		BinaryPath:    cfg.EngineBinaryPath,
		RuntimeLibDir: cfg.EngineRuntimeLibDir,
	}, logger.Named("engine"))
	if err != nil {
		log.Fatalf("engine supervisor init error: %v", err)
	}

	svc, err := game.NewService(sup, rules.NewBoardOracle, logger.Named("game"))
	if err != nil {
		log.Fatalf("service init error: %v", err)
	}

	srv := httpapi.New(svc, render.NewBoardRenderer(), cfg.DefaultSearchDepth, logger.Named("http"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(cfg.ListenAddr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("http server failed", zap.Error(err))
		}
	}

	if err := srv.Shutdown(); err != nil {
		logger.Warn("http shutdown failed", zap.Error(err))
	}
	sup.Stop()
}
