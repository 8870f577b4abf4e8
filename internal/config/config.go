package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ZaguanLabs/formlingo/backend"
	"github.com/ZaguanLabs/formlingo/relay"
)

const (
	// Session store constants
	StoreMemory = "memory"
	StoreRedis  = "redis"

	// EnvPrefix prefixes every environment variable, e.g. FORMLINGO_BACKEND_URL.
	EnvPrefix = "FORMLINGO"

	// Default values
	DefaultPort       = 8080
	DefaultHost       = "127.0.0.1"
	DefaultSessionTTL = 2 * time.Hour
	DefaultMaxUpload  = 20 * 1024 * 1024 // 20MB
	DefaultRedisURL   = "redis://localhost:6379"
)

// Config holds all configuration for formlingo
type Config struct {
	// Server configuration
	Host string
	Port int

	// Upstream services
	BackendURL  string
	RelayURL    string
	DownloadURL string
	HTTPTimeout time.Duration // 0 uses the transport default

	// Shared budget for translation requests; 0 disables limiting
	RateLimit int // Requests per minute
	RateBurst int // 0 defaults to RateLimit

	// Form library override; empty uses the built-in catalog
	Catalog string

	// Sessions
	SessionStore string // "memory" or "redis"
	RedisURL     string
	SessionTTL   time.Duration

	MaxUpload int64 // Maximum upload size in bytes
	Quiet     bool
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Host:         DefaultHost,
		Port:         DefaultPort,
		BackendURL:   backend.DefaultBaseURL,
		RelayURL:     relay.DefaultRelayURL,
		DownloadURL:  relay.DefaultDownloadURL,
		SessionStore: StoreMemory,
		RedisURL:     DefaultRedisURL,
		SessionTTL:   DefaultSessionTTL,
		MaxUpload:    DefaultMaxUpload,
	}
}

// RegisterFlags defines the shared flags on fs with defaults from cfg.
func RegisterFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.String("host", cfg.Host, "Server host address")
	fs.Int("port", cfg.Port, "Server port")
	fs.String("backend-url", cfg.BackendURL, "Translation service base URL")
	fs.String("relay-url", cfg.RelayURL, "Relay used to download library forms")
	fs.String("download-url", cfg.DownloadURL, "Direct-download endpoint of the document host")
	fs.Duration("http-timeout", cfg.HTTPTimeout, "Timeout for outbound HTTP requests (0 for none)")
	fs.Int("rate-limit", cfg.RateLimit, "Translation requests per minute across all sessions (0 for unlimited)")
	fs.Int("rate-burst", cfg.RateBurst, "Burst size for the rate limit (default: same as --rate-limit)")
	fs.String("catalog", cfg.Catalog, "Path to a YAML form library (default: built-in)")
	fs.String("session-store", cfg.SessionStore, "Session store: 'memory' or 'redis'")
	fs.String("redis-url", cfg.RedisURL, "Redis URL for the redis session store")
	fs.Duration("session-ttl", cfg.SessionTTL, "Session lifetime (0 for no expiry)")
	fs.Int64("max-upload", cfg.MaxUpload, "Maximum upload size in bytes")
	fs.BoolP("quiet", "q", cfg.Quiet, "Suppress progress output")
}

// Load reads .env, parses args into fs and resolves every setting with the
// precedence flag > environment > default. fs must not have been parsed yet;
// callers may add their own flags to it beforehand.
func Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	v := newViper(cfg)
	RegisterFlags(fs, cfg)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	populateConfigFromViper(v, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads path into the environment when it exists. Variables
// already set are left alone.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// newViper configures a viper instance with environment variables and defaults
func newViper(cfg *Config) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("backend-url", cfg.BackendURL)
	v.SetDefault("relay-url", cfg.RelayURL)
	v.SetDefault("download-url", cfg.DownloadURL)
	v.SetDefault("http-timeout", cfg.HTTPTimeout)
	v.SetDefault("rate-limit", cfg.RateLimit)
	v.SetDefault("rate-burst", cfg.RateBurst)
	v.SetDefault("catalog", cfg.Catalog)
	v.SetDefault("session-store", cfg.SessionStore)
	v.SetDefault("redis-url", cfg.RedisURL)
	v.SetDefault("session-ttl", cfg.SessionTTL)
	v.SetDefault("max-upload", cfg.MaxUpload)
	v.SetDefault("quiet", cfg.Quiet)
	return v
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.BackendURL = v.GetString("backend-url")
	cfg.RelayURL = v.GetString("relay-url")
	cfg.DownloadURL = v.GetString("download-url")
	cfg.HTTPTimeout = v.GetDuration("http-timeout")
	cfg.RateLimit = v.GetInt("rate-limit")
	cfg.RateBurst = v.GetInt("rate-burst")
	cfg.Catalog = v.GetString("catalog")
	cfg.SessionStore = strings.ToLower(v.GetString("session-store"))
	cfg.RedisURL = v.GetString("redis-url")
	cfg.SessionTTL = v.GetDuration("session-ttl")
	cfg.MaxUpload = v.GetInt64("max-upload")
	cfg.Quiet = v.GetBool("quiet")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}

	for name, raw := range map[string]string{
		"backend-url":  c.BackendURL,
		"relay-url":    c.RelayURL,
		"download-url": c.DownloadURL,
	} {
		if err := validateHTTPURL(raw); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	switch c.SessionStore {
	case StoreMemory:
	case StoreRedis:
		if c.RedisURL == "" {
			return errors.New("redis-url is required for the redis session store")
		}
	default:
		return fmt.Errorf("session-store must be either '%s' or '%s'", StoreMemory, StoreRedis)
	}

	if c.MaxUpload <= 0 {
		return errors.New("maximum upload size must be positive")
	}
	if c.SessionTTL < 0 {
		return errors.New("session-ttl cannot be negative")
	}
	if c.HTTPTimeout < 0 {
		return errors.New("http-timeout cannot be negative")
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return errors.New("rate-limit and rate-burst cannot be negative")
	}

	if c.Catalog != "" {
		if _, err := os.Stat(c.Catalog); err != nil {
			return fmt.Errorf("cannot access catalog %s: %w", c.Catalog, err)
		}
	}

	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q must be an http(s) URL", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Host: %s, Port: %d, BackendURL: %s, RelayURL: %s, SessionStore: %s, SessionTTL: %s, MaxUpload: %d}",
		c.Host, c.Port, c.BackendURL, c.RelayURL, c.SessionStore, c.SessionTTL, c.MaxUpload)
}
