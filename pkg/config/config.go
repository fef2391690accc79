// Package config loads server settings from an optional YAML file, an
// optional .env file and the process environment, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Mail drivers.
const (
	MailSMTP = "smtp"
	MailStub = "stub"
)

type HTTPConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"corsOrigins"`
	StaticDir   string   `yaml:"staticDir"`

	// SecureCookies marks preference cookies Secure; enable behind HTTPS.
	SecureCookies bool `yaml:"secureCookies"`
}

type StoreConfig struct {
	Driver      string `yaml:"driver"`
	DatabaseURL string `yaml:"databaseUrl"`
	SQLitePath  string `yaml:"sqlitePath"`
}

// MailConfig is never validated at startup: an incomplete relay
// configuration is reported by the mail client when a send is attempted.
type MailConfig struct {
	Driver   string        `yaml:"driver"`
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Secure   bool          `yaml:"secure"`
	User     string        `yaml:"user"`
	Password string        `yaml:"password"`
	From     string        `yaml:"from"`
	To       string        `yaml:"to"`
	Timeout  time.Duration `yaml:"timeout"`
}

type AdminConfig struct {
	// TokenHash is a bcrypt hash of the bearer token that unlocks the
	// message listing. Empty disables the listing.
	TokenHash string `yaml:"tokenHash"`
}

type ContactConfig struct {
	// DefaultSubject replaces an omitted subject. Empty means an omitted
	// subject is a validation error.
	DefaultSubject string `yaml:"defaultSubject"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Config is the full server configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Store   StoreConfig   `yaml:"store"`
	Mail    MailConfig    `yaml:"mail"`
	Admin   AdminConfig   `yaml:"admin"`
	Contact ContactConfig `yaml:"contact"`
	Log     LogConfig     `yaml:"log"`

	// Warnings collects settings that were ignored while loading.
	Warnings []string `yaml:"-"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:        ":5000",
			CORSOrigins: []string{"http://localhost:5173"},
			StaticDir:   "public",
		},
		Store: StoreConfig{
			SQLitePath: "data/contact.db",
		},
		Mail: MailConfig{
			Driver:  MailSMTP,
			Port:    587,
			Timeout: 15 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadOptions names the optional files read by Load.
type LoadOptions struct {
	ConfigFile string
	EnvFile    string
}

// Load builds the configuration: defaults, then the YAML file, then the
// environment (after loading EnvFile into it). A missing EnvFile is not an
// error; a missing ConfigFile is.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	}

	if opts.ConfigFile != "" {
		data, err := os.ReadFile(opts.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", opts.ConfigFile, err)
		}
	}

	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with environment values. The EMAIL_* names used
// by the original site deployment are accepted as fallbacks for MAIL_*.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	get := func(keys ...string) (string, bool) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v), true
			}
		}
		return "", false
	}

	if v, ok := get("HTTP_ADDR"); ok {
		c.HTTP.Addr = v
	} else if v, ok := get("PORT"); ok {
		c.HTTP.Addr = ":" + v
	}
	if v, ok := get("CORS_ORIGINS"); ok {
		c.HTTP.CORSOrigins = splitList(v)
	}
	if v, ok := get("STATIC_DIR"); ok {
		c.HTTP.StaticDir = v
	}
	if v, ok := get("COOKIE_SECURE"); ok {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			c.Warnings = append(c.Warnings, fmt.Sprintf("ignoring invalid cookie secure flag %q", v))
		} else {
			c.HTTP.SecureCookies = secure
		}
	}

	if v, ok := get("DATABASE_URL"); ok {
		c.Store.DatabaseURL = v
	}
	if v, ok := get("SQLITE_PATH"); ok {
		c.Store.SQLitePath = v
	}
	if v, ok := get("STORE_DRIVER"); ok {
		c.Store.Driver = strings.ToLower(v)
	}

	if v, ok := get("MAIL_DRIVER"); ok {
		c.Mail.Driver = strings.ToLower(v)
	}
	if v, ok := get("MAIL_HOST", "EMAIL_HOST"); ok {
		c.Mail.Host = v
	}
	if v, ok := get("MAIL_PORT", "EMAIL_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 {
			c.Warnings = append(c.Warnings, fmt.Sprintf("ignoring invalid mail port %q", v))
			c.Mail.Port = 0
		} else {
			c.Mail.Port = port
		}
	}
	if v, ok := get("MAIL_SECURE", "EMAIL_SECURE"); ok {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			c.Warnings = append(c.Warnings, fmt.Sprintf("ignoring invalid mail secure flag %q", v))
		} else {
			c.Mail.Secure = secure
		}
	}
	if v, ok := get("MAIL_USER", "EMAIL_USER"); ok {
		c.Mail.User = v
	}
	if v, ok := get("MAIL_PASSWORD", "EMAIL_PASSWORD"); ok {
		c.Mail.Password = v
	}
	if v, ok := get("MAIL_FROM", "EMAIL_FROM"); ok {
		c.Mail.From = v
	}
	if v, ok := get("MAIL_TO", "EMAIL_TO"); ok {
		c.Mail.To = v
	}
	if v, ok := get("MAIL_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			c.Warnings = append(c.Warnings, fmt.Sprintf("ignoring invalid mail timeout %q", v))
		} else {
			c.Mail.Timeout = d
		}
	}

	if v, ok := get("ADMIN_TOKEN_HASH"); ok {
		c.Admin.TokenHash = v
	}
	if v, ok := lookup("CONTACT_DEFAULT_SUBJECT"); ok {
		c.Contact.DefaultSubject = strings.TrimSpace(v)
	}

	if v, ok := get("LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := get("LOG_FILE"); ok {
		c.Log.File = v
	}

	if c.Store.Driver == "" {
		if c.Store.DatabaseURL != "" {
			c.Store.Driver = StorePostgres
		} else {
			c.Store.Driver = StoreMemory
		}
	}

	switch c.Mail.Driver = strings.ToLower(c.Mail.Driver); c.Mail.Driver {
	case MailSMTP, MailStub:
	default:
		c.Warnings = append(c.Warnings, fmt.Sprintf("unknown mail driver %q, using %s", c.Mail.Driver, MailSMTP))
		c.Mail.Driver = MailSMTP
	}

	c.Log.Level = strings.ToLower(c.Log.Level)
	if c.Log.Level == "warning" {
		c.Log.Level = "warn"
	}
}

// Validate rejects settings the server cannot start with. Mail settings
// are not checked here.
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return fmt.Errorf("config: http address cannot be empty")
	}

	switch c.Store.Driver {
	case StoreMemory:
	case StorePostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("config: store driver %q requires DATABASE_URL", c.Store.Driver)
		}
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("config: store driver %q requires SQLITE_PATH", c.Store.Driver)
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
