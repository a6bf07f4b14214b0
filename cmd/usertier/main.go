// Command usertier sets the stored tier for a device from the shell.
// Only storable tiers are accepted; the lifetime tier is derived from the
// founder identity and can never be written.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"echomail/internal/access"
	"echomail/internal/adapter/repo"
	"echomail/internal/domain"
	"echomail/internal/infra"
)

func main() {
	var (
		deviceFlag string
		tierFlag   string
		emailFlag  string
	)
	flag.StringVar(&deviceFlag, "device", "", "device ID to update")
	flag.StringVar(&tierFlag, "tier", "PRO", "tier to assign (BASIC or PRO)")
	flag.StringVar(&emailFlag, "email", "", "optionally bind an account email to the device")
	flag.Parse()

	deviceID := strings.TrimSpace(deviceFlag)
	if deviceID == "" {
		exitWithError(errors.New("-device is required"))
	}
	tier, ok := domain.ParseStoredTier(tierFlag)
	if !ok {
		exitWithError(fmt.Errorf("unsupported tier %q (BASIC or PRO)", tierFlag))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "usertier").Logger()
	prefs := repo.NewPrefStore(infra.NewSQLRunner(pool, logger))

	opCtx, cancelOp := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelOp()

	if email := strings.TrimSpace(emailFlag); email != "" {
		if err := prefs.SetIdentityEmail(opCtx, deviceID, email); err != nil {
			exitWithError(fmt.Errorf("failed to bind email: %w", err))
		}
		fmt.Printf("device %s bound to %s\n", deviceID, email)
	}

	if err := prefs.SaveTier(opCtx, deviceID, tier); err != nil {
		exitWithError(fmt.Errorf("failed to store tier: %w", err))
	}

	email, err := prefs.IdentityEmail(opCtx, deviceID)
	if err != nil {
		email = ""
	}
	stored, _ := prefs.StoredTier(opCtx, deviceID)
	effective := access.EffectiveTier(email, stored)
	fmt.Printf("device %s stored tier %s (effective %s)\n", deviceID, tier, effective)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
