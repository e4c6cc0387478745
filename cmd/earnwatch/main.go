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

	"github.com/gin-gonic/gin"

	"github.com/earnwatch/earnwatch/internal/account"
	"github.com/earnwatch/earnwatch/internal/config"
	"github.com/earnwatch/earnwatch/internal/feedback"
	"github.com/earnwatch/earnwatch/internal/server"
	"github.com/earnwatch/earnwatch/internal/storage"
	"github.com/earnwatch/earnwatch/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.Initialize(); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Log.Sync()

	store, err := openStore(cfg)
	if err != nil {
		logger.Log.Fatal("failed to open store", logger.Error(err))
	}

	users, err := store.LoadUsers()
	if err != nil {
		logger.Log.Fatal("failed to load accounts", logger.Error(err))
	}
	entries, err := store.LoadFeedback()
	if err != nil {
		logger.Log.Fatal("failed to load feedback", logger.Error(err))
	}

	registry := account.NewRegistry(store)
	registry.Restore(users)

	feedbackLog := feedback.NewLog(store)
	feedbackLog.Restore(entries)

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(registry, feedbackLog, server.NewAuth(cfg.JWTSecret))
	router := srv.Router(cfg.CORSOrigins)

	httpServer := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.Info("starting server", logger.String("address", cfg.Address))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("server error", logger.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("error shutting down server", logger.Error(err))
	}

	// Every mutation is already flushed, but take one last snapshot so a
	// shutdown racing an in-flight request can't lose it.
	if err := store.SaveUsers(registry.Snapshot()); err != nil {
		logger.Log.Error("final account flush failed", logger.Error(err))
	}
	if err := store.SaveFeedback(feedbackLog.All()); err != nil {
		logger.Log.Error("final feedback flush failed", logger.Error(err))
	}

	if err := store.Close(); err != nil {
		logger.Log.Error("error closing store", logger.Error(err))
	}
	logger.Log.Info("shutdown complete")
}

func openStore(cfg *config.Config) (storage.Persister, error) {
	if cfg.DatabaseDSN != "" {
		return storage.OpenPostgres(cfg.DatabaseDSN)
	}
	return storage.NewFileStore(cfg.UsersFile, cfg.FeedbacksFile), nil
}
