package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	AuthSigningKey string   `mapstructure:"AUTH_SIGNING_KEY"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`

	RefDataPath string `mapstructure:"REF_DATA_PATH"`

	ClearinghouseBaseURL      string `mapstructure:"CLEARINGHOUSE_BASE_URL"`
	ClearinghouseClientID     string `mapstructure:"CLEARINGHOUSE_CLIENT_ID"`
	ClearinghouseClientSecret string `mapstructure:"CLEARINGHOUSE_CLIENT_SECRET"`
	ClearinghouseTimeoutSecs  int    `mapstructure:"CLEARINGHOUSE_TIMEOUT_SECONDS"`

	ProviderCRNumber string  `mapstructure:"PROVIDER_CR_NUMBER"`
	ClaimBaseRate    float64 `mapstructure:"CLAIM_BASE_RATE"`
	DNFBThresholdHrs int     `mapstructure:"DNFB_THRESHOLD_HOURS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("CLEARINGHOUSE_TIMEOUT_SECONDS", 15)
	v.SetDefault("CLAIM_BASE_RATE", 1000)
	v.SetDefault("DNFB_THRESHOLD_HOURS", 48)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("AUTH_SIGNING_KEY")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("REF_DATA_PATH")
	v.BindEnv("CLEARINGHOUSE_BASE_URL")
	v.BindEnv("CLEARINGHOUSE_CLIENT_ID")
	v.BindEnv("CLEARINGHOUSE_CLIENT_SECRET")
	v.BindEnv("CLEARINGHOUSE_TIMEOUT_SECONDS")
	v.BindEnv("PROVIDER_CR_NUMBER")
	v.BindEnv("CLAIM_BASE_RATE")
	v.BindEnv("DNFB_THRESHOLD_HOURS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.IsDev() {
		log.Println("WARNING: ============================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active — all requests get admin access.")
		log.Println("WARNING: Without DATABASE_URL all state is held in memory.")
		log.Println("WARNING: Do NOT use this configuration in production.")
		log.Println("WARNING: ============================================================")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Production
// refuses to start without a database and a real signing key; development
// may run fully in memory.
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required in production")
		}
		if c.AuthSigningKey == "" {
			return fmt.Errorf("AUTH_SIGNING_KEY is required in production")
		}
	}
	if c.ClearinghouseBaseURL != "" && !strings.HasPrefix(c.ClearinghouseBaseURL, "https://") {
		return fmt.Errorf("CLEARINGHOUSE_BASE_URL must use https, got %q", c.ClearinghouseBaseURL)
	}
	if c.ClaimBaseRate < 0 {
		return fmt.Errorf("CLAIM_BASE_RATE must not be negative")
	}
	return nil
}

// ClearinghouseConfigured reports whether a payer endpoint is wired in;
// without one, autonomous jobs stay in the review queue instead of
// auto-submitting.
func (c *Config) ClearinghouseConfigured() bool {
	return c.ClearinghouseBaseURL != "" && c.ClearinghouseClientID != "" && c.ClearinghouseClientSecret != ""
}

// ClearinghouseTimeout returns the configured request timeout.
func (c *Config) ClearinghouseTimeout() time.Duration {
	return time.Duration(c.ClearinghouseTimeoutSecs) * time.Second
}

// DNFBThreshold returns how long a discharged encounter may stay unbilled
// before it counts against the DNFB rate.
func (c *Config) DNFBThreshold() time.Duration {
	return time.Duration(c.DNFBThresholdHrs) * time.Hour
}
