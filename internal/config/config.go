package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by schedulr,
// e.g. SCHEDULR_HTTP_ADDR for the http-addr key.
const EnvPrefix = "SCHEDULR"

// Transport names accepted by the serve command.
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// Config holds the runtime configuration of the server.
type Config struct {
	Transport string `mapstructure:"transport"`
	HTTPAddr  string `mapstructure:"http-addr"`
	Debug     bool   `mapstructure:"debug"`

	MetricsEnabled  bool   `mapstructure:"metrics-enabled"`
	MetricsAddr     string `mapstructure:"metrics-addr"`
	MetricsExporter string `mapstructure:"metrics-exporter"`

	Google GoogleConfig `mapstructure:",squash"`

	Scheduling SchedulingConfig `mapstructure:",squash"`
}

// GoogleConfig selects the Google account and where its OAuth token comes from.
type GoogleConfig struct {
	Account      string `mapstructure:"account"`
	TokenDir     string `mapstructure:"token-dir"`
	AccessToken  string `mapstructure:"google-access-token"`
	RefreshToken string `mapstructure:"google-refresh-token"`
	ClientID     string `mapstructure:"google-client-id"`
	ClientSecret string `mapstructure:"google-client-secret"`
}

// HasStaticToken reports whether a token was passed through configuration
// instead of a token file.
func (g GoogleConfig) HasStaticToken() bool {
	return g.AccessToken != "" || g.RefreshToken != ""
}

// SchedulingConfig holds the defaults of the scheduling workflow.
type SchedulingConfig struct {
	SenderName  string        `mapstructure:"sender-name"`
	SenderEmail string        `mapstructure:"sender-email"`
	DaysAhead   int           `mapstructure:"days-ahead"`
	DailyHours  []int         `mapstructure:"daily-hours"`
	MinSlot     time.Duration `mapstructure:"min-slot"`
}

// Defaults applied before flags, environment and config file. Every key
// needs an entry here for AutomaticEnv to reach it through Unmarshal.
var defaults = map[string]any{
	"transport":            TransportStdio,
	"http-addr":            ":8080",
	"debug":                false,
	"metrics-enabled":      true,
	"metrics-addr":         ":9090",
	"metrics-exporter":     "prometheus",
	"account":              "default",
	"token-dir":            "",
	"google-access-token":  "",
	"google-refresh-token": "",
	"sender-name":          "",
	"sender-email":         "",
	"days-ahead":           7,
	"daily-hours":          []int{10, 14, 16},
	"min-slot":             30 * time.Minute,
}

// New returns a viper instance reading, from lowest to highest precedence,
// defaults, the config file, SCHEDULR_* environment variables and the set
// flags of fs. An empty configFile searches for schedulr.yaml in the
// working directory and the user config directory; a missing file is not
// an error then.
func New(fs *pflag.FlagSet, configFile string) (*viper.Viper, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// The unprefixed names are what Google's own tooling uses.
	if err := v.BindEnv("google-client-id", EnvPrefix+"_GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_ID"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("google-client-secret", EnvPrefix+"_GOOGLE_CLIENT_SECRET", "GOOGLE_CLIENT_SECRET"); err != nil {
		return nil, err
	}

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		return v, nil
	}

	v.SetConfigName("schedulr")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "schedulr"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	switch c.Transport {
	case TransportStdio:
	case TransportStreamableHTTP:
		if c.HTTPAddr == "" {
			return fmt.Errorf("http-addr is required for the %s transport", TransportStreamableHTTP)
		}
	default:
		return fmt.Errorf("invalid transport %q, must be one of: %s, %s", c.Transport, TransportStdio, TransportStreamableHTTP)
	}

	if c.MetricsEnabled && c.MetricsAddr == "" {
		return fmt.Errorf("metrics-addr is required when metrics are enabled")
	}
	if c.Google.Account == "" {
		return fmt.Errorf("account cannot be empty")
	}

	s := c.Scheduling
	if s.DaysAhead < 1 || s.DaysAhead > 60 {
		return fmt.Errorf("days-ahead must be between 1 and 60, got %d", s.DaysAhead)
	}
	if len(s.DailyHours) == 0 {
		return fmt.Errorf("daily-hours cannot be empty")
	}
	for _, h := range s.DailyHours {
		if h < 0 || h > 23 {
			return fmt.Errorf("daily-hours must be between 0 and 23, got %d", h)
		}
	}
	if s.MinSlot <= 0 {
		return fmt.Errorf("min-slot must be positive, got %s", s.MinSlot)
	}
	if s.SenderEmail != "" && !strings.Contains(s.SenderEmail, "@") {
		return fmt.Errorf("sender-email %q is not an email address", s.SenderEmail)
	}
	return nil
}
