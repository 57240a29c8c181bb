// ============================================================================
// cmd/api/main.go
// Entry point for the LearnHub API server.
// ============================================================================

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

	"learnhub/internal/api"
	"learnhub/internal/auth"
	"learnhub/internal/course"
	"learnhub/internal/educator"
	"learnhub/internal/shared"
	"learnhub/internal/store"
)

func main() {
	shared.LoadEnv(".env")

	cfg, err := shared.LoadConfig()
	if err != nil {
		log.Fatalf("[api] invalid configuration: %v", err)
	}

	client, db, err := shared.ConnectMongoDB(&cfg.MongoDB)
	if err != nil {
		log.Fatalf("[api] failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := shared.DisconnectMongoDB(client); err != nil {
			log.Printf("[api] error disconnecting from MongoDB: %v", err)
		}
	}()
	log.Printf("[api] connected to MongoDB database %q", cfg.MongoDB.Database)

	indexCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := store.EnsureIndexes(indexCtx, db); err != nil {
		log.Fatalf("[api] failed to ensure indexes: %v", err)
	}

	stores := store.NewMongoStores(client, db)

	tokens := auth.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	authSvc := auth.NewService(stores.Users, tokens, cfg.Security.BCryptCost)
	courseSvc := course.NewService(stores)
	educatorSvc := educator.NewService(stores)

	server := api.NewServer(cfg, tokens, authSvc, courseSvc, educatorSvc)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      server.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[api] listening on :%s (%s)", cfg.HTTPPort, cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[api] server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[api] shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("[api] forced shutdown: %v", err)
	}
	log.Println("[api] stopped")
}
