package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreBackendSupabase = "supabase"
	StoreBackendSQLite   = "sqlite"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Session SessionConfig `yaml:"session"`
	Media   MediaConfig   `yaml:"media"`
}

type ServerConfig struct {
	Name    string `yaml:"name"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	BaseURL string `yaml:"base_url"`
}

type StoreConfig struct {
	Backend  string         `yaml:"backend"`
	Supabase SupabaseConfig `yaml:"supabase"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
}

type SupabaseConfig struct {
	URL            string `yaml:"url"`
	ServiceRoleKey string `yaml:"service_role_key"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type SessionConfig struct {
	// Secret signs session tokens. Deliberately not required at load time:
	// the API layer refuses to issue or verify tokens without it and
	// reports the missing config per request.
	Secret       string        `yaml:"secret"`
	CookieMaxAge time.Duration `yaml:"cookie_max_age"`
}

// MediaConfig holds the third-party media host credentials used to sign
// direct-upload policies. The server never touches uploaded bytes.
type MediaConfig struct {
	CloudName     string `yaml:"cloud_name"`
	APIKey        string `yaml:"api_key"`
	APISecret     string `yaml:"api_secret"`
	DefaultFolder string `yaml:"default_folder"`
}

func (m MediaConfig) Configured() bool {
	return m.CloudName != "" && m.APIKey != "" && m.APISecret != ""
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SUPABASE_URL"); v != "" {
		c.Store.Supabase.URL = v
	}
	if v := os.Getenv("SUPABASE_SERVICE_ROLE_KEY"); v != "" {
		c.Store.Supabase.ServiceRoleKey = v
	}
	if v := os.Getenv("APP_SESSION_SECRET"); v != "" {
		c.Session.Secret = v
	}
	if v := os.Getenv("CLOUDINARY_CLOUD_NAME"); v != "" {
		c.Media.CloudName = v
	}
	if v := os.Getenv("CLOUDINARY_API_KEY"); v != "" {
		c.Media.APIKey = v
	}
	if v := os.Getenv("CLOUDINARY_API_SECRET"); v != "" {
		c.Media.APISecret = v
	}
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case StoreBackendSupabase, StoreBackendSQLite:
	default:
		return fmt.Errorf("store.backend must be %q or %q", StoreBackendSupabase, StoreBackendSQLite)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Name == "" {
		c.Server.Name = "Celebration Page"
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
	}
	if c.Store.Backend == "" {
		c.Store.Backend = StoreBackendSupabase
	}
	if c.Store.SQLite.Path == "" {
		c.Store.SQLite.Path = "./data/celebration.db"
	}
	if c.Session.CookieMaxAge == 0 {
		c.Session.CookieMaxAge = 30 * 24 * time.Hour
	}
	if c.Media.DefaultFolder == "" {
		c.Media.DefaultFolder = "birthday-memories"
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// SecureCookies reports whether session cookies should carry the Secure
// flag, based on the public base URL scheme.
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(c.Server.BaseURL, "https://")
}
