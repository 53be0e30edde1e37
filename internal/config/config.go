package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all airwatch configuration.
type Config struct {
	Aircraft AircraftConfig `mapstructure:"aircraft"`
	Feed     FeedConfig     `mapstructure:"feed"`
	State    StateConfig    `mapstructure:"state"`
	Alerts   AlertsConfig   `mapstructure:"alerts"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// AircraftConfig identifies the watched aircraft.
type AircraftConfig struct {
	ICAO           string `mapstructure:"icao"`
	MinGroundSpeed int    `mapstructure:"min_ground_speed"`
}

// FeedConfig defines the ADS-B feed endpoint.
type FeedConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StateConfig defines where run state is persisted.
type StateConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// AlertsConfig defines alerting integrations.
type AlertsConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Slack    SlackConfig    `mapstructure:"slack"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	NATS     NATSConfig     `mapstructure:"nats"`
}

func (a AlertsConfig) anyEnabled() bool {
	return a.Telegram.Enabled || a.Slack.Enabled || a.Webhook.Enabled || a.NATS.Enabled
}

// TelegramConfig defines Telegram bot settings.
type TelegramConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
	ChatID  string `mapstructure:"chat_id"`
	APIURL  string `mapstructure:"api_url"`
}

// SlackConfig defines Slack webhook settings.
type SlackConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
}

// WebhookConfig defines generic webhook settings.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Secret  string `mapstructure:"secret"`
}

// NATSConfig defines the NATS publisher.
type NATSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

// MetricsConfig defines the node-exporter textfile output.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Environment names used by existing cron and CI deployments.
var legacyEnv = map[string]string{
	"aircraft.icao":             "ICAO_HEX",
	"aircraft.min_ground_speed": "MIN_GS",
	"feed.url":                  "ADSB_URL",
	"alerts.telegram.token":     "TG_TOKEN",
	"alerts.telegram.chat_id":   "TG_CHAT_ID",
}

var icaoPattern = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)

// Load reads configuration from file and environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".airwatch"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Defaults
	v.SetDefault("aircraft.icao", "")
	v.SetDefault("aircraft.min_ground_speed", 40)
	v.SetDefault("feed.url", "")
	v.SetDefault("feed.timeout", "20s")
	v.SetDefault("state.driver", "file")
	v.SetDefault("state.path", "state.json")
	v.SetDefault("alerts.telegram.enabled", true)
	v.SetDefault("alerts.telegram.token", "")
	v.SetDefault("alerts.telegram.chat_id", "")
	v.SetDefault("alerts.telegram.api_url", "https://api.telegram.org")
	v.SetDefault("alerts.slack.enabled", false)
	v.SetDefault("alerts.slack.webhook_url", "")
	v.SetDefault("alerts.slack.channel", "")
	v.SetDefault("alerts.webhook.enabled", false)
	v.SetDefault("alerts.webhook.url", "")
	v.SetDefault("alerts.webhook.secret", "")
	v.SetDefault("alerts.nats.enabled", false)
	v.SetDefault("alerts.nats.url", "nats://127.0.0.1:4222")
	v.SetDefault("alerts.nats.subject", "airwatch.alerts")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Environment variables
	v.SetEnvPrefix("AIRWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := "AIRWATCH_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Aircraft.ICAO = strings.ToLower(strings.TrimSpace(cfg.Aircraft.ICAO))

	return &cfg, nil
}

// Validate checks the settings a poll run depends on.
func (c *Config) Validate() error {
	var errs []error

	if c.Aircraft.ICAO == "" {
		errs = append(errs, errors.New("aircraft.icao is required (ICAO_HEX)"))
	} else if !icaoPattern.MatchString(c.Aircraft.ICAO) {
		errs = append(errs, fmt.Errorf("aircraft.icao %q is not a 6-digit hex address", c.Aircraft.ICAO))
	}
	if c.Aircraft.MinGroundSpeed < 0 {
		errs = append(errs, errors.New("aircraft.min_ground_speed must not be negative"))
	}
	if c.Feed.URL == "" {
		errs = append(errs, errors.New("feed.url is required (ADSB_URL)"))
	}
	if c.Feed.Timeout <= 0 {
		errs = append(errs, errors.New("feed.timeout must be positive"))
	}

	if t := c.Alerts.Telegram; t.Enabled {
		if t.Token == "" {
			errs = append(errs, errors.New("alerts.telegram.token is required (TG_TOKEN)"))
		}
		if t.ChatID == "" {
			errs = append(errs, errors.New("alerts.telegram.chat_id is required (TG_CHAT_ID)"))
		}
	}
	if c.Alerts.Slack.Enabled && c.Alerts.Slack.WebhookURL == "" {
		errs = append(errs, errors.New("alerts.slack.webhook_url is required when slack is enabled"))
	}
	if c.Alerts.Webhook.Enabled && c.Alerts.Webhook.URL == "" {
		errs = append(errs, errors.New("alerts.webhook.url is required when webhook is enabled"))
	}
	if n := c.Alerts.NATS; n.Enabled && (n.URL == "" || n.Subject == "") {
		errs = append(errs, errors.New("alerts.nats.url and alerts.nats.subject are required when nats is enabled"))
	}
	if !c.Alerts.anyEnabled() {
		errs = append(errs, errors.New("at least one alert sink must be enabled (telegram, slack, webhook or nats)"))
	}

	switch c.State.Driver {
	case "file", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("state.driver %q is not one of file, sqlite", c.State.Driver))
	}
	if c.State.Path == "" {
		errs = append(errs, errors.New("state.path is required"))
	}

	return errors.Join(errs...)
}
