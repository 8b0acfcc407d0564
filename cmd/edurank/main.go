package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/BharatBattles/edurank-glow/internal/audit"
	"github.com/BharatBattles/edurank-glow/internal/auth"
	"github.com/BharatBattles/edurank-glow/internal/config"
	"github.com/BharatBattles/edurank-glow/internal/db"
	"github.com/BharatBattles/edurank-glow/internal/logging"
	"github.com/BharatBattles/edurank-glow/internal/ratelimit"
	"github.com/BharatBattles/edurank-glow/internal/server"
	"github.com/BharatBattles/edurank-glow/internal/version"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("EDURANK_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.Init(cfg.Log.Environment, cfg.Log.Level)
	defer logging.Sync()

	logger.Info("starting edurank-glow",
		zap.String("version", version.Version),
		zap.String("addr", cfg.Server.Addr),
		zap.String("db", cfg.Database.Path))

	gdb, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	store := db.NewStore(gdb)
	limiter := ratelimit.NewLimiter(store, logger)
	recorder := audit.NewRecorder(store, logger)

	validator, err := auth.NewValidator(cfg.Auth.JWTSecret)
	if err != nil {
		logger.Fatal("failed to initialize token validator", zap.Error(err))
	}

	srv := server.New(store, limiter, recorder, logger)
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Router(validator, cfg.Server.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()
	logger.Info("listening", zap.String("addr", cfg.Server.Addr))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
