package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	JWTSecret   string
	CORSOrigins []string

	// Trial gating. TrialDays drives the local trial clock;
	// CheckoutTrialDays is forwarded to Stripe checkout. They default to
	// the same value, but promotional flows may configure a longer
	// checkout trial.
	TrialDays         int
	CheckoutTrialDays int

	// Concurrent identity-profile caps per tier. Distinct from the
	// per-profile document slot count, which is a pure function of tier.
	ProfileSlotsBasic int
	ProfileSlotsPro   int

	StripeSecretKey    string
	StripePriceID      string
	CheckoutSuccessURL string
	CheckoutCancelURL  string

	OpenAIModel   string
	OpenAIBaseURL string
	WhisperModel  string

	GeoIPDBPath   string
	DefaultLocale string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	trialDays := getEnvInt("TRIAL_DAYS", 5)
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		CORSOrigins:        splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		TrialDays:          trialDays,
		CheckoutTrialDays:  getEnvInt("CHECKOUT_TRIAL_DAYS", trialDays),
		ProfileSlotsBasic:  getEnvInt("PROFILE_SLOTS_BASIC", 1),
		ProfileSlotsPro:    getEnvInt("PROFILE_SLOTS_PRO", 3),
		StripeSecretKey:    os.Getenv("STRIPE_SECRET_KEY"),
		StripePriceID:      os.Getenv("STRIPE_PRICE_ID"),
		CheckoutSuccessURL: getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/upgrade?session_id={CHECKOUT_SESSION_ID}"),
		CheckoutCancelURL:  getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/upgrade"),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		WhisperModel:       getEnv("WHISPER_MODEL", "whisper-1"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale:      getEnv("DEFAULT_LOCALE", "es"),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.TrialDays <= 0 {
		return nil, fmt.Errorf("TRIAL_DAYS must be positive")
	}
	if cfg.ProfileSlotsBasic <= 0 || cfg.ProfileSlotsPro < cfg.ProfileSlotsBasic {
		return nil, fmt.Errorf("invalid profile slot configuration: basic=%d pro=%d", cfg.ProfileSlotsBasic, cfg.ProfileSlotsPro)
	}

	return cfg, nil
}

// ProfileSlots returns the concurrent profile cap for a tier label as
// produced by the access engine ("BASIC" caps low, everything else pro).
func (c *Config) ProfileSlots(isBasic bool) int {
	if isBasic {
		return c.ProfileSlotsBasic
	}
	return c.ProfileSlotsPro
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
