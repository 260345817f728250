package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadcenter/internal/auth"
	"leadcenter/internal/calllog"
	"leadcenter/internal/config"
	"leadcenter/internal/httpapi"
	"leadcenter/internal/ingest"
	"leadcenter/internal/leads"
	"leadcenter/internal/reporting"
	"leadcenter/internal/secrets"
	"leadcenter/internal/voiceai"
	"leadcenter/pkg/logger"
	"leadcenter/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Call-log pipeline wiring
	logRepo := calllog.NewPostgresRepo(db)
	logService := calllog.NewService(logRepo, log)
	leadRepo := leads.NewPostgresRepo(db)
	recorder := ingest.NewPostgresRecorder(db)

	resolver := secrets.NewResolver(secrets.NewRedisStore(rdb), cfg.VoiceAI.DefaultAPIKey, log)
	client := voiceai.NewClient(cfg.VoiceAI, log)
	normalizer := calllog.NewNormalizer(calllog.Defaults{
		AssistantID:    cfg.VoiceAI.AssistantID,
		OrganizationID: cfg.VoiceAI.OrganizationID,
		Country:        cfg.VoiceAI.DefaultCountry,
	})
	matcher := leads.NewMatcher(leadRepo, log)
	pipeline := ingest.NewPipeline(resolver, client, normalizer, matcher, logService, recorder, log)

	handlers := httpapi.Handlers{
		Auth:     authManager,
		Pipeline: pipeline,
		Logs:     logService,
		Reports:  reporting.NewService(logRepo),
		Runs:     recorder,
		Redis:    rdb,
		Log:      log,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, handlers, auth.RequireAccessToken(authManager))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      10 * time.Minute, // sync runs can be slow against flaky upstreams
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
