package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/loveletter/internal/auth"
	"github.com/jason-s-yu/loveletter/internal/cache"
	"github.com/jason-s-yu/loveletter/internal/config"
	"github.com/jason-s-yu/loveletter/internal/database"
	"github.com/jason-s-yu/loveletter/internal/server"
	"github.com/jason-s-yu/loveletter/internal/store"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	cfg.ConfigureLogger()
	logrus.WithFields(logrus.Fields{
		"env":  cfg.Env,
		"port": cfg.Port,
	}).Info("Starting Love Letter server")

	ctx := context.Background()
	hub := server.NewHub(store.NewRoomStore(), auth.DeriveSigningKey(cfg.JWTSecret), cfg.SessionTTL, cfg.OriginAllow)
	hub.PublicURL = cfg.PublicURL

	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logrus.Warnf("Action stream disabled: %v", err)
		} else {
			defer rdb.Close()
			hub.Publisher = cache.NewRedisPublisher(rdb)
		}
	}

	if cfg.DatabaseURL != "" {
		archive, err := database.ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			logrus.Warnf("Result archive disabled: %v", err)
		} else if err := archive.EnsureSchema(ctx); err != nil {
			logrus.Warnf("Result archive disabled: %v", err)
			archive.Close()
		} else {
			defer archive.Close()
			hub.Results = archive
		}
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           hub.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	logrus.Infof("Received signal %s, shutting down", sig)

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownPeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Shutdown: %v", err)
	}
	logrus.Info("Server stopped")
}
