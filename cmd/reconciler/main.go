// Command reconciler sweeps stored subscription references against the
// billing provider on an interval. Devices whose subscription is no
// longer active lose the reference and drop back to the BASIC tier.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"echomail/internal/access"
	"echomail/internal/adapter/repo"
	"echomail/internal/domain"
	"echomail/internal/infra"
	"echomail/internal/infra/billing"
)

const defaultSweepInterval = 6 * time.Hour

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "reconciler").Logger()

	stripeClient := billing.NewClient(cfg.StripeSecretKey)
	if stripeClient == nil {
		logger.Fatal().Msg("reconciler: STRIPE_SECRET_KEY is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("reconciler: db connection failed")
	}
	defer pool.Close()

	prefs := repo.NewPrefStore(infra.NewSQLRunner(pool, logger))
	engine := access.NewEngine(access.Stores{
		Identity:      prefs,
		Tiers:         prefs,
		Trials:        prefs,
		Credentials:   prefs,
		Subscriptions: prefs,
	}, access.NewTrialClock(cfg.TrialDays), logger)
	reconciler := billing.NewReconciler(stripeClient, logger)

	interval := sweepInterval()
	logger.Info().Dur("interval", interval).Msg("reconciler: started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sweep(ctx, logger, prefs, engine, reconciler)
	for {
		select {
		case <-ctx.Done():
			if !errors.Is(ctx.Err(), context.Canceled) {
				logger.Error().Err(ctx.Err()).Msg("reconciler: stopped with error")
			}
			logger.Info().Msg("reconciler: stopped")
			return
		case <-ticker.C:
			sweep(ctx, logger, prefs, engine, reconciler)
		}
	}
}

func sweep(ctx context.Context, logger zerolog.Logger, prefs *repo.PrefStore, engine *access.Engine, reconciler *billing.Reconciler) {
	refs, err := prefs.ListSubscriptionRefs(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("reconciler: listing subscriptions failed")
		return
	}
	logger.Info().Int("devices", len(refs)).Msg("reconciler: sweep started")

	var demoted int
	for deviceID, ref := range refs {
		if ctx.Err() != nil {
			return
		}
		if err := reconciler.Refresh(ctx, deviceID, ref); err != nil {
			logger.Warn().Err(err).Str("device", deviceID).Msg("reconciler: status fetch failed")
			continue
		}
		snap, ok := reconciler.Cached(deviceID)
		if !ok || snap.IsPro || snap.Status == "" {
			continue
		}
		if err := prefs.ClearSubscriptionRef(ctx, deviceID); err != nil {
			logger.Warn().Err(err).Str("device", deviceID).Msg("reconciler: clear ref failed")
			continue
		}
		if !engine.SaveTier(ctx, deviceID, domain.TierBasic) {
			logger.Warn().Str("device", deviceID).Msg("reconciler: tier demotion failed")
			continue
		}
		demoted++
		logger.Info().Str("device", deviceID).Str("subscription", ref).Str("status", snap.Status).Msg("reconciler: demoted to basic")
	}
	logger.Info().Int("demoted", demoted).Msg("reconciler: sweep finished")
}

func sweepInterval() time.Duration {
	raw := os.Getenv("BILLING_SWEEP_INTERVAL_SECONDS")
	if raw == "" {
		return defaultSweepInterval
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return defaultSweepInterval
	}
	return time.Duration(secs) * time.Second
}
