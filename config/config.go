package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	rosterdomain "github.com/Black-And-White-Club/tripscore/app/modules/roster/domain"
	tripdomain "github.com/Black-And-White-Club/tripscore/app/modules/trip/domain"
	"github.com/Black-And-White-Club/tripscore/app/shared/competition"
	"github.com/Black-And-White-Club/tripscore/internal/observability"
	"github.com/Black-And-White-Club/tripscore/internal/store"
)

// Config struct to hold the configuration settings
type Config struct {
	Trip          tripdomain.Itinerary  `yaml:"trip"`
	Roster        []rosterdomain.Player `yaml:"roster"`
	Competition   CompetitionConfig     `yaml:"competition"`
	Store         StoreConfig           `yaml:"store"`
	Postgres      PostgresConfig        `yaml:"postgres"`
	NATS          NATSConfig            `yaml:"nats"`
	HTTP          HTTPConfig            `yaml:"http"`
	JWT           JWTConfig             `yaml:"jwt"`
	Queue         QueueConfig           `yaml:"queue"`
	Artifacts     ArtifactsConfig       `yaml:"artifacts"`
	Observability ObservabilityConfig   `yaml:"observability"`
}

// CompetitionConfig holds the calendar and prize rules.
type CompetitionConfig struct {
	Timezone       string            `yaml:"timezone"`
	Days           []competition.Day `yaml:"days"`
	PrizeAmount    int               `yaml:"prize_amount"`
	EntryFee       int               `yaml:"entry_fee"`
	Currency       string            `yaml:"currency"`
	OverallEnabled *bool             `yaml:"overall_enabled"`
	RankPolicy     string            `yaml:"rank_policy"`
}

// StoreConfig selects the score store backend.
type StoreConfig struct {
	Backend        string        `yaml:"backend"` // nats|postgres|local
	LocalPath      string        `yaml:"local_path"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL      string `yaml:"url"`
	Bucket   string `yaml:"bucket"`
	NKeySeed string `yaml:"nkey_seed"`
}

// HTTPConfig holds the API server settings.
type HTTPConfig struct {
	Address        string        `yaml:"address"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RateLimit      float64       `yaml:"rate_limit"`
	RateBurst      int           `yaml:"rate_burst"`
	ShutdownGrace  time.Duration `yaml:"shutdown_grace"`
}

// JWTConfig holds the admin token settings.
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	Issuer     string        `yaml:"issuer"`
	Audience   string        `yaml:"audience"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// QueueConfig enables the river job queue. It needs Postgres.DSN.
type QueueConfig struct {
	Enabled    bool `yaml:"enabled"`
	MaxWorkers int  `yaml:"max_workers"`
}

// ArtifactsConfig holds the S3-compatible results upload target.
type ArtifactsConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
	MetricsEnabled *bool  `yaml:"metrics_enabled"`
}

// LoadConfig loads .env (if any), then the YAML file, then environment
// overrides. A missing file yields the defaults plus environment.
func LoadConfig(filename string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	data, err := os.ReadFile(filename)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// environment only
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from environment variables.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("STORE_LOCAL_PATH"); v != "" {
		cfg.Store.LocalPath = v
	}
	if v := os.Getenv("STORE_CONNECT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid STORE_CONNECT_TIMEOUT value: %v", err)
		}
		cfg.Store.ConnectTimeout = d
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("NATS_BUCKET"); v != "" {
		cfg.NATS.Bucket = v
	}
	if v := os.Getenv("NATS_NKEY_SEED"); v != "" {
		cfg.NATS.NKeySeed = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("JWT_DEFAULT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid JWT_DEFAULT_TTL value: %v", err)
		}
		cfg.JWT.DefaultTTL = d
	}
	if v := os.Getenv("QUEUE_ENABLED"); v != "" {
		cfg.Queue.Enabled = v == "true"
	}
	if v := os.Getenv("ARTIFACTS_ENABLED"); v != "" {
		cfg.Artifacts.Enabled = v == "true"
	}
	if v := os.Getenv("ARTIFACTS_BUCKET"); v != "" {
		cfg.Artifacts.Bucket = v
	}
	if v := os.Getenv("ARTIFACTS_ENDPOINT"); v != "" {
		cfg.Artifacts.Endpoint = v
	}
	if v := os.Getenv("ARTIFACTS_REGION"); v != "" {
		cfg.Artifacts.Region = v
	}
	if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
		cfg.Artifacts.AccessKeyID = v
	}
	if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
		cfg.Artifacts.SecretAccessKey = v
	}
	if v := os.Getenv("PRIZE_AMOUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PRIZE_AMOUNT value: %v", err)
		}
		cfg.Competition.PrizeAmount = n
	}
	if v := os.Getenv("RANK_POLICY"); v != "" {
		cfg.Competition.RankPolicy = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if _, err := c.BuildRoster(); err != nil {
		return fmt.Errorf("roster: %w", err)
	}
	if _, err := c.BuildCalendar(); err != nil {
		return fmt.Errorf("competition: %w", err)
	}
	if _, err := c.Rules(); err != nil {
		return fmt.Errorf("competition: %w", err)
	}
	if err := c.Trip.Validate(); err != nil {
		return fmt.Errorf("trip: %w", err)
	}
	switch c.Store.Backend {
	case store.BackendNATS, store.BackendPostgres, store.BackendLocal:
	default:
		return fmt.Errorf("store: unknown backend %q", c.Store.Backend)
	}
	if c.Queue.Enabled && c.Postgres.DSN == "" {
		return fmt.Errorf("queue: enabled but postgres.dsn is empty")
	}
	if c.Artifacts.Enabled && c.Artifacts.Bucket == "" {
		return fmt.Errorf("artifacts: enabled but bucket is empty")
	}
	return nil
}

func (c *Config) BuildRoster() (*rosterdomain.Roster, error) {
	return rosterdomain.NewRoster(c.Roster)
}

func (c *Config) BuildCalendar() (*competition.Calendar, error) {
	loc := time.UTC
	if c.Competition.Timezone != "" {
		l, err := time.LoadLocation(c.Competition.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", c.Competition.Timezone, err)
		}
		loc = l
	}
	return competition.NewCalendar(c.Competition.Days, loc)
}

// Rules converts the competition section into engine rules.
func (c *Config) Rules() (competition.Rules, error) {
	r := competition.DefaultRules()
	r.PrizeAmount = c.Competition.PrizeAmount
	r.EntryFee = c.Competition.EntryFee
	if c.Competition.Currency != "" {
		r.Currency = c.Competition.Currency
	}
	if c.Competition.OverallEnabled != nil {
		r.OverallEnabled = *c.Competition.OverallEnabled
	}
	if c.Competition.RankPolicy != "" {
		r.RankPolicy = competition.RankPolicy(c.Competition.RankPolicy)
	}
	if r.PrizeAmount < 0 || r.EntryFee < 0 {
		return r, fmt.Errorf("prize amount and entry fee must not be negative")
	}
	if r.RankPolicy != competition.RankSequential && r.RankPolicy != competition.RankShared {
		return r, fmt.Errorf("unknown rank policy %q", r.RankPolicy)
	}
	return r, nil
}

func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend: c.Store.Backend,
		NATS: store.NATSOptions{
			URL:      c.NATS.URL,
			Bucket:   c.NATS.Bucket,
			NKeySeed: c.NATS.NKeySeed,
			Timeout:  c.Store.ConnectTimeout,
		},
		PostgresDSN:    c.Postgres.DSN,
		LocalPath:      c.Store.LocalPath,
		ConnectTimeout: c.Store.ConnectTimeout,
	}
}

func (c *Config) MetricsEnabled() bool {
	return c.Observability.MetricsEnabled == nil || *c.Observability.MetricsEnabled
}

func ToObsConfig(appCfg *Config) observability.Config {
	return observability.Config{
		Environment: appCfg.Observability.Environment,
		LogLevel:    appCfg.Observability.LogLevel,
	}
}
