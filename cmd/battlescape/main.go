package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mr1hm/battlescape/internal/api"
	"github.com/mr1hm/battlescape/internal/config"
	"github.com/mr1hm/battlescape/internal/events"
	internalgrpc "github.com/mr1hm/battlescape/internal/grpc"
	"github.com/mr1hm/battlescape/internal/ingestion"
	"github.com/mr1hm/battlescape/internal/logging"
	"github.com/mr1hm/battlescape/internal/repository"
	"github.com/mr1hm/battlescape/internal/session"
	"github.com/mr1hm/battlescape/internal/source"
	"github.com/mr1hm/battlescape/internal/store"
	"github.com/mr1hm/battlescape/internal/web"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port, "source", cfg.Source.Kind)

	if err := os.MkdirAll(filepath.Dir(cfg.DB.Path), 0o755); err != nil {
		logging.Fatalf("Failed to create database directory: %v", err)
	}
	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider, err := newProvider(ctx, cfg.Source)
	if err != nil {
		logging.Fatalf("Failed to initialize battle source: %v", err)
	}

	st := store.NewStore()
	sessions := session.NewManager()
	broadcaster := events.NewBroadcaster()
	grpcServer := internalgrpc.NewServer()

	mgr := ingestion.NewManager(provider, db, st, broadcaster, cfg.Source.ReloadInterval)
	mgr.OnLoad(sessions.RevalidateAll)
	mgr.OnLoad(func(*store.Snapshot) {
		grpcServer.SetDataAvailable(true)
	})

	// The API answers 503 until a dataset is installed, so a failed first
	// load is not fatal.
	if err := mgr.Load(ctx); err != nil {
		slog.Error("initial battle load failed", "source", provider.Name(), "error", err)
	}
	mgr.Start(ctx)

	go sessions.RunJanitor(ctx, cfg.Session.JanitorInterval, cfg.Session.IdleTimeout)

	go func() {
		grpcAddr := fmt.Sprintf(":%d", cfg.GRPC.Port)
		if err := grpcServer.Start(grpcAddr); err != nil {
			logging.Fatalf("gRPC server error: %v", err)
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimit))

	handler := api.NewHandler(st, sessions, mgr, broadcaster)
	handler.RegisterRoutes(router)
	web.Register(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}
	// Event streams never go idle on their own.
	srv.RegisterOnShutdown(broadcaster.Close)

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	cancel()
	mgr.Stop()
	grpcServer.Stop()

	slog.Info("shutdown complete")
}

func newProvider(ctx context.Context, cfg config.SourceConfig) (source.Provider, error) {
	switch cfg.Kind {
	case config.SourceCSV:
		return source.NewCSVProvider(cfg.CSVLocation), nil
	case config.SourceSheets:
		client, err := source.NewSheetsClient(ctx, cfg.SheetsCredentialsFile)
		if err != nil {
			return nil, err
		}
		return &source.SheetsProvider{
			Reader:        client,
			SpreadsheetID: cfg.SheetsSpreadsheetID,
			Range:         cfg.SheetsRange,
		}, nil
	default:
		return source.SampleProvider{}, nil
	}
}
