package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"edu-platform/internal/config"
	"edu-platform/internal/infra/api"
	pg "edu-platform/internal/infra/db/postgres"
	"edu-platform/internal/infra/logging"
	"edu-platform/internal/infra/metrics"
	red "edu-platform/internal/infra/redis"
	"edu-platform/internal/infra/sched"
	"edu-platform/internal/infra/web"
	"edu-platform/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, verbose)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool)
	userRepo := pg.NewUserRepo(pool)
	codeRepo := pg.NewCodeRepo(pool)
	packageRepo := pg.NewPackageRepoCacheDecorator(pg.NewPackageRepo(pool), redisClient, cfg.Redis.TTL)
	walletRepo := pg.NewWalletRepo(pool)
	walletEntryRepo := pg.NewWalletEntryRepo(pool)
	entitlementRepo := pg.NewEntitlementRepo(pool)
	lectureRepo := pg.NewLectureRepo(pool)
	reconRepo := pg.NewReconciliationRepo(pool)

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, walletRepo, txManager, logger)
	packageUC := usecase.NewPackageUseCase(packageRepo)
	lectureUC := usecase.NewLectureUseCase(lectureRepo, packageRepo, entitlementRepo)
	walletUC := usecase.NewWalletUseCase(walletRepo, walletEntryRepo, logger)
	entitlementUC := usecase.NewEntitlementUseCase(entitlementRepo, logger)
	codeAdminUC := usecase.NewCodeAdminUseCase(codeRepo, packageRepo, logger)
	reconUC := usecase.NewReconciliationUseCase(reconRepo)
	statsUC := usecase.NewStatsUseCase(userRepo, entitlementRepo, walletEntryRepo, codeRepo, reconRepo)
	redemptionUC := usecase.NewRedemptionUseCase(
		userRepo, codeRepo, packageRepo, walletRepo, walletEntryRepo, entitlementRepo, reconRepo, logger,
	)

	// ---- Public API ----
	sessions := api.NewSessionManager(cfg.API.JWTSecret, cfg.API.SessionTTL)
	apiServer := api.NewServer(
		userUC, packageUC, redemptionUC, entitlementUC, walletUC, lectureUC,
		sessions, rateLimiter,
		api.ServerConfig{
			RedeemLimit:  cfg.API.RedeemLimit,
			RedeemWindow: cfg.API.RedeemWindow,
			Timeout:      cfg.API.RequestLimit,
		},
		logger,
	)
	publicSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.API.Port),
		Handler: apiServer.Router(),
	}
	go func() {
		logger.Info().Str("addr", publicSrv.Addr).Msg("public API listening")
		if err := publicSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("public API server error")
		}
	}()

	// ---- Admin API (+ /metrics) ----
	adminServer := web.NewServer(statsUC, userUC, packageUC, lectureUC, codeAdminUC, walletUC, reconUC, cfg.Admin.APIKey, logger)
	adminMux := http.NewServeMux()
	adminServer.RegisterRoutes(adminMux)
	metrics.MustRegister()
	adminMux.Handle("/metrics", promhttp.Handler())
	adminSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Admin.Port),
		Handler: api.Chain(adminMux, api.TraceID(), api.RequestLog(logger), api.Recover(logger)),
	}
	go func() {
		logger.Info().Str("addr", adminSrv.Addr).Msg("admin API listening")
		if err := adminSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("admin API server error")
		}
	}()

	// ---- Background workers ----
	expiryWorker := sched.NewExpiryWorker(cfg.Sweeper.Interval, entitlementUC, logger)
	go func() { _ = expiryWorker.Run(ctx) }()
	reconMonitor := sched.NewReconciliationMonitor(cfg.Sweeper.Interval, reconUC, logger)
	go func() { _ = reconMonitor.Run(ctx) }()

	// ---- Graceful shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info().Msg("shutdown signal received")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := publicSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("public API shutdown error")
	}
	if err := adminSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("admin API shutdown error")
	}
	logger.Info().Msg("bye")
}
