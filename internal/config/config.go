// Package config provides application configuration loaded from environment
// variables. Use the package-level Get() function to obtain the singleton
// Config instance.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sub-config structs
// ──────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string        // e.g. "8080"
	Env            string        // "development" | "production"
	ReadTimeout    time.Duration // default 10s
	WriteTimeout   time.Duration // default 10s
	AllowedOrigins []string      // CORS / WebSocket origins; empty allows all (development)
}

// LeagueConfig holds the betting rules enforced around the core state store.
type LeagueConfig struct {
	MinBetPoints  int           // minimum stake, enforced at the HTTP layer (default 10)
	MaxBetPoints  int           // maximum stake (default 100)
	BettingWindow time.Duration // betting open this long after a match starts (default 30s)
}

// StorageConfig selects and configures the snapshot backend.
type StorageConfig struct {
	Backend      string        // "file" | "redis" | "postgres"
	FilePath     string        // file backend: path of the JSON document
	RedisAddr    string        // redis backend: host:port
	RedisDB      int           // redis backend: logical DB
	RedisKey     string        // redis backend: key holding the JSON document
	PostgresDSN  string        // postgres backend: full DSN
	SaveInterval time.Duration // minimum interval between snapshot writes (default 60s)
}

// AuthConfig holds the single-credential login and token settings.
// The club tracker has exactly one shared login; there are no per-user
// accounts.
type AuthConfig struct {
	Username  string        // login username (default "admin")
	Password  string        // login password; must be set in production
	JWTSecret string        // token signing secret; must be set in production
	TokenTTL  time.Duration // session token lifetime (default 12h)
}

// ──────────────────────────────────────────────────────────────────────────────
// Top-level Config
// ──────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object for the entire application.
type Config struct {
	Server  ServerConfig
	League  LeagueConfig
	Storage StorageConfig
	Auth    AuthConfig
}

// IsProd returns true when running in the production environment.
func (c *Config) IsProd() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and
// valid. Returns the joined validation errors.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Backend {
	case "file", "redis", "postgres":
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be file, redis or postgres, got %q", c.Storage.Backend))
	}
	if c.Storage.Backend == "postgres" && c.Storage.PostgresDSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN must be set for the postgres backend"))
	}

	if c.IsProd() {
		if c.Auth.Password == "" {
			errs = append(errs, errors.New("AUTH_PASSWORD must be set in production"))
		}
		if c.Auth.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET must be set in production"))
		}
	}

	if c.League.MaxBetPoints < c.League.MinBetPoints {
		errs = append(errs, fmt.Errorf(
			"LEAGUE_MAX_BET (%d) must be >= LEAGUE_MIN_BET (%d)",
			c.League.MaxBetPoints, c.League.MinBetPoints,
		))
	}
	if c.League.BettingWindow <= 0 {
		errs = append(errs, errors.New("LEAGUE_BETTING_WINDOW must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Singleton
// ──────────────────────────────────────────────────────────────────────────────

var (
	instance *Config
	once     sync.Once
	loadErr  error
)

// Get returns the singleton Config, loading it once from environment
// variables. Panics if loading fails — call this early in main() to catch
// misconfigurations at startup.
func Get() *Config {
	once.Do(func() {
		instance, loadErr = load()
	})
	if loadErr != nil {
		panic(fmt.Sprintf("config: failed to load: %v", loadErr))
	}
	return instance
}

// MustLoad loads and validates configuration. Intended for use in main().
// Panics on any error so misconfiguration is caught immediately at boot.
func MustLoad() *Config {
	cfg := Get()
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("config: validation failed: %v", err))
	}
	return cfg
}

// ──────────────────────────────────────────────────────────────────────────────
// Internal loader
// ──────────────────────────────────────────────────────────────────────────────

func load() (*Config, error) {
	cfg := &Config{}

	// ── Server ────────────────────────────────────────────────────────────────
	cfg.Server = ServerConfig{
		Port:           getEnv("SERVER_PORT", "8080"),
		Env:            getEnv("ENVIRONMENT", "development"),
		ReadTimeout:    getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:   getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		AllowedOrigins: getList("CORS_ORIGINS"),
	}

	// ── League rules ──────────────────────────────────────────────────────────
	minBet, err := getInt("LEAGUE_MIN_BET", 10)
	if err != nil {
		return nil, fmt.Errorf("LEAGUE_MIN_BET: %w", err)
	}
	maxBet, err := getInt("LEAGUE_MAX_BET", 100)
	if err != nil {
		return nil, fmt.Errorf("LEAGUE_MAX_BET: %w", err)
	}
	cfg.League = LeagueConfig{
		MinBetPoints:  minBet,
		MaxBetPoints:  maxBet,
		BettingWindow: getDuration("LEAGUE_BETTING_WINDOW", 30*time.Second),
	}

	// ── Storage ───────────────────────────────────────────────────────────────
	redisDB, err := getInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" && os.Getenv("DB_HOST") != "" {
		// Build DSN from individual components for convenience in dev
		dsn = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", ""),
			getEnv("DB_NAME", "pingpong_league"),
			getEnv("DB_SSLMODE", "disable"),
		)
	}
	cfg.Storage = StorageConfig{
		Backend:      getEnv("STORAGE_BACKEND", "file"),
		FilePath:     getEnv("STORAGE_FILE_PATH", "data/pingpong-game-data.json"),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:      redisDB,
		RedisKey:     getEnv("REDIS_KEY", "pingpong:game-data"),
		PostgresDSN:  dsn,
		SaveInterval: getDuration("STORAGE_SAVE_INTERVAL", time.Minute),
	}

	// ── Auth ──────────────────────────────────────────────────────────────────
	cfg.Auth = AuthConfig{
		Username:  getEnv("AUTH_USERNAME", "admin"),
		Password:  getEnv("AUTH_PASSWORD", "pingpong"),
		JWTSecret: getEnv("JWT_SECRET", "dev-only-secret-change-me"),
		TokenTTL:  getDuration("JWT_TOKEN_TTL", 12*time.Hour),
	}

	return cfg, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helper functions
// ──────────────────────────────────────────────────────────────────────────────

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// getList parses an env var as a comma-separated list, dropping empty items.
func getList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", v)
	}
	return n, nil
}

// getDuration parses an env var as a Go duration string (e.g. "30s", "5m").
// Falls back to defaultVal if the variable is unset or unparseable.
func getDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
