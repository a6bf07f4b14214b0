package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"echomail/internal/access"
	"echomail/internal/adapter/repo"
	"echomail/internal/domain"
	"echomail/internal/http/handlers"
	"echomail/internal/http/httpapi"
	"echomail/internal/infra"
	"echomail/internal/infra/billing"
	"echomail/internal/infra/credentials"
	"echomail/internal/infra/geoip"
	"echomail/internal/middleware"
	"echomail/internal/providers/draft"
	"echomail/internal/providers/transcribe"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)
	prefs := repo.NewPrefStore(runner)
	profiles := repo.NewProfileStore(runner)
	serviceKeys := credentials.NewStore(runner)

	clock := access.NewTrialClock(cfg.TrialDays)
	engine := access.NewEngine(access.Stores{
		Identity:      prefs,
		Tiers:         prefs,
		Trials:        prefs,
		Credentials:   prefs,
		Subscriptions: prefs,
	}, clock, logger)
	engine.OnTierChanged(func(deviceID string, tier domain.Tier) {
		logger.Info().Str("device", deviceID).Str("tier", string(tier)).Msg("tier changed")
	})

	stripeClient := billing.NewClient(cfg.StripeSecretKey)
	var (
		checkout   handlers.CheckoutService
		reconciler *billing.Reconciler
	)
	if stripeClient != nil {
		checkout = stripeClient
		reconciler = billing.NewReconciler(stripeClient, logger)
	} else {
		logger.Warn().Msg("stripe key missing, billing endpoints disabled")
	}

	writer := draft.NewOpenAIWriter(draft.OpenAIOptions{
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
		OnFallback: func(reason string, err error) {
			logger.Warn().Err(err).Str("reason", reason).Msg("draft provider fell back")
		},
	})
	transcriber := transcribe.NewWhisperTranscriber(transcribe.WhisperOptions{
		Model:   cfg.WhisperModel,
		BaseURL: cfg.OpenAIBaseURL,
	})

	var lookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable")
	} else if resolver != nil {
		defer resolver.Close()
		lookup = resolver.CountryCode
	}

	app := &handlers.App{
		Logger:      logger,
		Cfg:         cfg,
		Engine:      engine,
		Prefs:       prefs,
		Profiles:    profiles,
		Billing:     checkout,
		Reconciler:  reconciler,
		Writer:      writer,
		Transcriber: transcriber,
		ServiceKeys: serviceKeys,
	}

	router := httpapi.NewRouter(app, lookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
