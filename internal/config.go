package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"golang.org/x/text/language"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Cache  CacheConfig       `yaml:"cache"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Remote RemoteConfig      `yaml:"remote"`
	Sync   SyncConfig        `yaml:"sync"`
	Undo   UndoConfig        `yaml:"undo"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Remote.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	Locale   string     `yaml:"locale"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.Locale != "" {
		if _, err := language.Parse(c.Locale); err != nil {
			return fmt.Errorf("app: invalid locale %q: %w", c.Locale, err)
		}
	}
	return c.HTTP.Validate()
}

// LocaleTag returns the configured locale as a language tag.
func (c *ApplicationConfig) LocaleTag() language.Tag {
	if c.Locale == "" {
		return language.Spanish
	}
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Spanish
	}
	return tag
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// CacheConfig holds the path to the local document cache directory.
type CacheConfig struct {
	Dir string `yaml:"dir"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// SQLiteConfig holds the search index database path.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// RemoteConfig holds the optional remote document store. An empty URL
// means no remote is configured; that is a static fact, not a runtime
// toggle.
type RemoteConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// Validate validates the remote configuration.
func (c *RemoteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.When(c.URL != "", is.URL)),
	)
}

// Configured reports whether a remote store is set up.
func (c *RemoteConfig) Configured() bool {
	return c.URL != ""
}

// SyncConfig tunes the remote push debounce.
type SyncConfig struct {
	DebounceMS int `yaml:"debounce_ms"`
}

// Debounce returns the trailing-edge window.
func (c *SyncConfig) Debounce() time.Duration {
	if c.DebounceMS <= 0 {
		return 600 * time.Millisecond
	}
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// UndoConfig tunes the undo grace period.
type UndoConfig struct {
	GraceMS int `yaml:"grace_ms"`
}

// Grace returns the countdown attached to each undo slot.
func (c *UndoConfig) Grace() time.Duration {
	if c.GraceMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.GraceMS) * time.Millisecond
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			Locale:   "es",
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Cache: CacheConfig{
			Dir: "./cache",
		},
		SQLite: SQLiteConfig{
			Path: "./raido.db",
		},
		Sync: SyncConfig{
			DebounceMS: 600,
		},
		Undo: UndoConfig{
			GraceMS: 5000,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
