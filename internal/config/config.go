package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// MinPresetDays is the shortest preset whose range has start before end
const MinPresetDays = 2

// Config holds all configuration for the forecast dashboard service
type Config struct {
	// Server configuration
	Port           string        `env:"PORT,default=8080"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS"`
	SessionTTL     time.Duration `env:"SESSION_TTL,default=30m"`

	// Forecast backend
	BackendURL     string        `env:"BACKEND_URL,default=http://localhost:5001"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT,default=0s"` // 0 leaves the lifetime to the transport

	// Export links. Empty keeps them relative and proxied through this service.
	ExportBaseURL string `env:"EXPORT_BASE_URL"`

	// Range selector
	PresetDays        []int  `env:"PRESET_DAYS,default=7,30,60,90"`
	DefaultPresetDays int    `env:"DEFAULT_PRESET_DAYS,default=30"`
	Timezone          string `env:"TIMEZONE,default=UTC"`

	// Presentation
	Locale string `env:"LOCALE,default=ar"`

	// Local testing configuration
	MockupMode bool `env:"MOCKUP_MODE,default=false"`

	// Service configuration
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	LogFormat   string `env:"LOG_FORMAT,default=json"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the rules that span several fields
func (c *Config) Validate() error {
	if len(c.PresetDays) == 0 {
		return fmt.Errorf("PRESET_DAYS must list at least one preset")
	}

	found := false
	for _, days := range c.PresetDays {
		// a one-day preset runs tomorrow..tomorrow, which the backend rejects
		if days < MinPresetDays {
			return fmt.Errorf("preset %d must span at least %d days", days, MinPresetDays)
		}
		if days == c.DefaultPresetDays {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("DEFAULT_PRESET_DAYS %d is not one of PRESET_DAYS %v", c.DefaultPresetDays, c.PresetDays)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.RequestTimeout < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT cannot be negative")
	}

	if strings.TrimSpace(c.BackendURL) == "" && !c.MockupMode {
		return fmt.Errorf("BACKEND_URL is required unless MOCKUP_MODE is enabled")
	}

	return nil
}

// Location resolves the timezone used to decide what "today" is
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
