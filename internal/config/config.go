package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Backend   BackendConfig   `yaml:"backend"`
	Storage   StorageConfig   `yaml:"storage"`
	Prices    PricesConfig    `yaml:"prices"`
	Inventory InventoryConfig `yaml:"inventory"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port            int            `yaml:"port"`
	Host            string         `yaml:"host"`
	BaseURL         string         `yaml:"base_url"` // Optional: public URL of this front (e.g., https://market.example.com)
	ReadTimeout     time.Duration  `yaml:"read_timeout"`
	WriteTimeout    time.Duration  `yaml:"write_timeout"`
	IdleTimeout     time.Duration  `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration  `yaml:"shutdown_timeout"`
	Security        SecurityConfig `yaml:"security"`
}

// SecurityConfig contains security-related settings
type SecurityConfig struct {
	CSRFSecret      string                `yaml:"csrf_secret"`
	MaxRequestBytes int64                 `yaml:"max_request_bytes"`
	Headers         SecurityHeadersConfig `yaml:"headers"`
}

// SecurityHeadersConfig contains HTTP security header settings
type SecurityHeadersConfig struct {
	XFrameOptions           string `yaml:"x_frame_options"`
	XContentTypeOptions     string `yaml:"x_content_type_options"`
	ReferrerPolicy          string `yaml:"referrer_policy"`
	ContentSecurityPolicy   string `yaml:"content_security_policy"`
	StrictTransportSecurity string `yaml:"strict_transport_security"`
}

// BackendConfig points at the auth backend the login buttons navigate to
type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	SteamLoginPath string `yaml:"steam_login_path"`
}

// StorageConfig contains database settings
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// PricesConfig controls the Skinport price sync
type PricesConfig struct {
	Enabled        bool          `yaml:"enabled"`
	SourceURL      string        `yaml:"source_url"`
	AppID          int           `yaml:"app_id"`
	Currency       string        `yaml:"currency"`
	Interval       time.Duration `yaml:"interval"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RetryMax       int           `yaml:"retry_max"`
}

// InventoryConfig controls Steam inventory lookups
type InventoryConfig struct {
	SourceURL         string        `yaml:"source_url"`
	IconBaseURL       string        `yaml:"icon_base_url"`
	CacheSize         int           `yaml:"cache_size"`
	CacheTTL          time.Duration `yaml:"cache_ttl"`
	RequestsPerWindow int           `yaml:"requests_per_window"`
	WindowDuration    time.Duration `yaml:"window_duration"`
	Burst             int           `yaml:"burst"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	RetryMax          int           `yaml:"retry_max"`
	ClientRPS         float64       `yaml:"client_rps"` // per-IP limit on /api/inventory, 0 disables
	ClientBurst       int           `yaml:"client_burst"`
}

// LogConfig contains logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

// Default returns a configuration with every optional field populated.
// The CSRF secret is left empty and must be provided.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3000,
			Host:            "localhost",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Security: SecurityConfig{
				MaxRequestBytes: 1 << 20,
				Headers: SecurityHeadersConfig{
					XFrameOptions:           "DENY",
					XContentTypeOptions:     "nosniff",
					ReferrerPolicy:          "strict-origin-when-cross-origin",
					ContentSecurityPolicy:   "default-src 'self'; img-src 'self' https://upload.wikimedia.org https://community.cloudflare.steamstatic.com; style-src 'self'",
					StrictTransportSecurity: "max-age=31536000; includeSubDomains",
				},
			},
		},
		Backend: BackendConfig{
			BaseURL:        "http://localhost:8080",
			SteamLoginPath: "/auth/steam",
		},
		Storage: StorageConfig{
			DBPath: "./data/csmarket.db",
		},
		Prices: PricesConfig{
			Enabled:        true,
			SourceURL:      "https://api.skinport.com/v1/items",
			AppID:          730,
			Currency:       "RUB",
			Interval:       10 * time.Minute,
			RequestTimeout: 30 * time.Second,
			RetryMax:       3,
		},
		Inventory: InventoryConfig{
			SourceURL:         "https://steamcommunity.com/inventory",
			IconBaseURL:       "https://community.cloudflare.steamstatic.com/economy/image/",
			CacheSize:         512,
			CacheTTL:          5 * time.Minute,
			RequestsPerWindow: 20,
			WindowDuration:    time.Minute,
			Burst:             5,
			RequestTimeout:    15 * time.Second,
			RetryMax:          1,
			ClientRPS:         1,
			ClientBurst:       5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from the specified file path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a configuration from YAML bytes layered over Default
func Parse(data []byte) (*Config, error) {
	// Expand environment variables in the config
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables if set
	if baseURL := os.Getenv("BACKEND_URL"); baseURL != "" {
		cfg.Backend.BaseURL = baseURL
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	secret := c.Server.Security.CSRFSecret
	if secret == "" || strings.Contains(secret, "${") {
		return fmt.Errorf("server.security.csrf_secret is required (set CSRF_SECRET environment variable)")
	}
	if len(secret) < 32 {
		return fmt.Errorf("server.security.csrf_secret must be at least 32 characters")
	}
	if c.Server.Security.MaxRequestBytes <= 0 {
		return fmt.Errorf("server.security.max_request_bytes must be positive")
	}

	// Backend validation
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an absolute http(s) URL, got %q", c.Backend.BaseURL)
	}
	if !strings.HasPrefix(c.Backend.SteamLoginPath, "/") {
		return fmt.Errorf("backend.steam_login_path must start with '/'")
	}

	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}

	if c.Prices.Enabled {
		if c.Prices.SourceURL == "" {
			return fmt.Errorf("prices.source_url is required when prices are enabled")
		}
		if c.Prices.Interval <= 0 {
			return fmt.Errorf("prices.interval must be positive")
		}
	}

	if c.Inventory.RequestsPerWindow < 1 {
		return fmt.Errorf("inventory.requests_per_window must be at least 1")
	}
	if c.Inventory.WindowDuration <= 0 {
		return fmt.Errorf("inventory.window_duration must be positive")
	}
	if c.Prices.RetryMax < 0 || c.Inventory.RetryMax < 0 {
		return fmt.Errorf("retry_max must not be negative")
	}
	if c.Inventory.ClientRPS < 0 {
		return fmt.Errorf("inventory.client_rps must not be negative")
	}
	if c.Inventory.ClientRPS > 0 && c.Inventory.ClientBurst < 1 {
		return fmt.Errorf("inventory.client_burst must be at least 1 when client_rps is set")
	}
	if c.Inventory.CacheSize < 1 {
		return fmt.Errorf("inventory.cache_size must be at least 1")
	}
	if c.Inventory.CacheTTL <= 0 {
		return fmt.Errorf("inventory.cache_ttl must be positive")
	}

	return nil
}

// GetAddr returns the full server address (host:port)
func (c *Config) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetBaseURL returns the public URL of this front
// Uses base_url if set, otherwise constructs from host:port
func (c *Config) GetBaseURL() string {
	if c.Server.BaseURL != "" {
		return c.Server.BaseURL
	}
	return fmt.Sprintf("http://%s", c.GetAddr())
}

// IsHTTPS returns true if the base URL uses HTTPS
func (c *Config) IsHTTPS() bool {
	return strings.HasPrefix(strings.ToLower(c.GetBaseURL()), "https://")
}

// SteamLoginURL returns the backend URL the Steam button navigates to
func (c *Config) SteamLoginURL() string {
	return strings.TrimRight(c.Backend.BaseURL, "/") + c.Backend.SteamLoginPath
}
