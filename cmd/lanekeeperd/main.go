package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lanekit/lanekeeper/internal/api"
	appcfg "github.com/lanekit/lanekeeper/internal/config"
	"github.com/lanekit/lanekeeper/internal/livegame"
	"github.com/lanekit/lanekeeper/internal/msgcat"
	"github.com/lanekit/lanekeeper/internal/notify"
	"github.com/lanekit/lanekeeper/internal/obslog"
	"github.com/lanekit/lanekeeper/internal/scoreboard"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = obslog.L().Sync() }()

	cat, err := msgcat.New(cfg.MsgOverrideDir)
	if err != nil {
		obslog.L().Fatal("message catalog init", zap.Error(err))
	}
	formatter := scoreboard.NewFormatter(cat)

	mgr, err := livegame.NewManager(cfg.RedisURL, time.Duration(cfg.GameTTLSec)*time.Second)
	if err != nil {
		obslog.L().Fatal("game manager init", zap.Error(err))
	}
	defer func() { _ = mgr.Close() }()
	mgr.AttachScoresheeter(formatter)

	var repo *livegame.Repository
	if cfg.DatabaseURL != "" {
		repo, err = livegame.NewRepository(cfg.DatabaseURL)
		if err != nil {
			obslog.L().Fatal("repository init", zap.Error(err))
		}
		defer func() { _ = repo.Close() }()
		mgr.AttachRepository(repo)
	} else {
		obslog.L().Warn("DATABASE_URL not set, league history disabled")
	}

	if cfg.WebhookURL != "" {
		headers := func() map[string]string {
			h := map[string]string{}
			if cfg.WebhookToken != "" {
				h["Authorization"] = "Bearer " + cfg.WebhookToken
			}
			return h
		}
		mgr.AttachNotifier(notify.NewClient(cfg.WebhookURL, notify.WithHeaderProvider(headers)))
	}

	srv := api.NewServer(mgr, repo, formatter)
	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		obslog.L().Info("listening", zap.String("addr", cfg.ListenAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			obslog.L().Fatal("http server", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	obslog.L().Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		obslog.L().Warn("shutdown", zap.Error(err))
	}
}
