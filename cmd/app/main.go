package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"telegram-quest-bot/internal/application"
	"telegram-quest-bot/internal/config"
	tele "telegram-quest-bot/internal/infra/adapters/telegram"
	pg "telegram-quest-bot/internal/infra/db/postgres"
	"telegram-quest-bot/internal/infra/decoder"
	"telegram-quest-bot/internal/infra/i18n"
	"telegram-quest-bot/internal/infra/logging"
	"telegram-quest-bot/internal/infra/metrics"
	red "telegram-quest-bot/internal/infra/redis"
	"telegram-quest-bot/internal/infra/web"
	"telegram-quest-bot/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, relaxed cookies)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, int32(cfg.Database.PoolSize))
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis (optional; rate limiting is off without it) ----
	var rateLimiter *red.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connect failed")
		}
		defer redisClient.Close()
		rateLimiter = red.NewRateLimiter(redisClient)
	} else {
		logger.Warn().Msg("redis not configured; photo rate limiting disabled")
	}

	// ---- Repositories ----
	userRepo := pg.NewUserRepo(pool)
	tokenRepo := pg.NewTokenRepo(pool)
	activationRepo := pg.NewActivationRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Decoder pool ----
	decoderPool := decoder.NewPool(cfg.Decoder.Workers, cfg.Decoder.QueueSize, logger)
	decoderPool.Start()
	defer decoderPool.Stop()

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, txManager, logger)
	tokenUC := usecase.NewTokenUseCase(tokenRepo, logger)
	ledgerUC := usecase.NewLedgerUseCase(activationRepo, logger)
	checkinUC := usecase.NewCheckinUseCase(decoderPool, userUC, tokenUC, ledgerUC, logger)

	// ---- Facade ----
	facade := application.NewBotFacade(userUC, tokenUC, ledgerUC, checkinUC)

	// ---- i18n ----
	translator, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Language)
	if err != nil {
		logger.Fatal().Err(err).Str("language", cfg.Bot.Language).Msg("translator init failed")
	}

	// ---- Telegram ----
	botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, facade, translator, rateLimiter, cfg.RateLimit, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram init failed")
	}
	if strings.ToLower(cfg.Bot.Mode) != "polling" {
		logger.Warn().Str("mode", cfg.Bot.Mode).Msg("bot mode not implemented; falling back to polling")
	}
	go func() {
		if err := botAdapter.StartPolling(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Admin web server ----
	if cfg.Web.Port > 0 {
		auth := web.NewAuthManager(cfg.Web.SessionSecret, cfg.Web.SecureCookie, cfg.Web.CookieDomain, cfg.Web.SessionTTL)
		srv := web.NewServer(userUC, ledgerUC, auth, cfg.Web.SessionSecret, logger)
		go func() {
			logger.Info().Int("port", cfg.Web.Port).Msg("admin server listening")
			if err := srv.ListenAndServe(ctx, cfg.Web.Port); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("admin server stopped")
			}
		}()
	}

	// ---- Pool stats reporter ----
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st := pool.Stat()
				metrics.SetDBPoolStats(st.TotalConns(), st.IdleConns(), st.AcquiredConns())
			}
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	botAdapter.StopPolling()
	cancel()
}
