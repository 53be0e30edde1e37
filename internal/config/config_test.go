package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ogulcanaydogan/airwatch/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "{}"))
	require.NoError(t, err)

	assert.Equal(t, 40, cfg.Aircraft.MinGroundSpeed)
	assert.Equal(t, 20*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, "file", cfg.State.Driver)
	assert.Equal(t, "state.json", cfg.State.Path)
	assert.True(t, cfg.Alerts.Telegram.Enabled)
	assert.Equal(t, "https://api.telegram.org", cfg.Alerts.Telegram.APIURL)
	assert.False(t, cfg.Alerts.Slack.Enabled)
	assert.False(t, cfg.Alerts.NATS.Enabled)
	assert.Equal(t, "airwatch.alerts", cfg.Alerts.NATS.Subject)
	assert.Empty(t, cfg.Metrics.Textfile)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
aircraft:
  icao: 3C6444
  min_ground_speed: 60
feed:
  url: https://feed.example/v2/hex/3c6444
  timeout: 5s
state:
  driver: sqlite
  path: /tmp/airwatch.db
alerts:
  telegram:
    token: "123:abc"
    chat_id: "-100200300"
  nats:
    enabled: true
    subject: planes.takeoff
metrics:
  textfile: /var/lib/node_exporter/airwatch.prom
logging:
  level: debug
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "3c6444", cfg.Aircraft.ICAO)
	assert.Equal(t, 60, cfg.Aircraft.MinGroundSpeed)
	assert.Equal(t, "https://feed.example/v2/hex/3c6444", cfg.Feed.URL)
	assert.Equal(t, 5*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, "sqlite", cfg.State.Driver)
	assert.Equal(t, "/tmp/airwatch.db", cfg.State.Path)
	assert.Equal(t, "123:abc", cfg.Alerts.Telegram.Token)
	assert.True(t, cfg.Alerts.NATS.Enabled)
	assert.Equal(t, "planes.takeoff", cfg.Alerts.NATS.Subject)
	assert.Equal(t, "/var/lib/node_exporter/airwatch.prom", cfg.Metrics.Textfile)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AIRWATCH_LOGGING_LEVEL", "error")
	t.Setenv("AIRWATCH_FEED_TIMEOUT", "3s")
	t.Setenv("AIRWATCH_ALERTS_TELEGRAM_CHAT_ID", "42")

	cfg, err := config.Load(writeConfig(t, "{}"))
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, 3*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, "42", cfg.Alerts.Telegram.ChatID)
}

func TestLoad_LegacyEnv(t *testing.T) {
	t.Setenv("ICAO_HEX", "3c6444")
	t.Setenv("ADSB_URL", "https://feed.example/v2/hex/3c6444")
	t.Setenv("TG_TOKEN", "123:abc")
	t.Setenv("TG_CHAT_ID", "-100200300")
	t.Setenv("MIN_GS", "55")

	cfg, err := config.Load(writeConfig(t, "{}"))
	require.NoError(t, err)

	assert.Equal(t, "3c6444", cfg.Aircraft.ICAO)
	assert.Equal(t, "https://feed.example/v2/hex/3c6444", cfg.Feed.URL)
	assert.Equal(t, "123:abc", cfg.Alerts.Telegram.Token)
	assert.Equal(t, "-100200300", cfg.Alerts.Telegram.ChatID)
	assert.Equal(t, 55, cfg.Aircraft.MinGroundSpeed)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_LegacyEnvZeroMinGroundSpeed(t *testing.T) {
	t.Setenv("MIN_GS", "0")

	cfg, err := config.Load(writeConfig(t, "{}"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Aircraft.MinGroundSpeed)
}

func TestLoad_TelegramDisabledWithoutOtherSinks(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
aircraft:
  icao: 3c6444
feed:
  url: https://feed.example
alerts:
  telegram:
    enabled: false
`))
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one alert sink must be enabled")
}

func TestLoad_PrefixedEnvWinsOverLegacy(t *testing.T) {
	t.Setenv("ICAO_HEX", "aaaaaa")
	t.Setenv("AIRWATCH_AIRCRAFT_ICAO", "3c6444")

	cfg, err := config.Load(writeConfig(t, "{}"))
	require.NoError(t, err)
	assert.Equal(t, "3c6444", cfg.Aircraft.ICAO)
}

func TestLoad_InvalidFile(t *testing.T) {
	_, err := config.Load(writeConfig(t, "invalid: [yaml"))
	assert.Error(t, err)
}

func validConfig() *config.Config {
	return &config.Config{
		Aircraft: config.AircraftConfig{ICAO: "3c6444", MinGroundSpeed: 40},
		Feed:     config.FeedConfig{URL: "https://feed.example", Timeout: 20 * time.Second},
		State:    config.StateConfig{Driver: "file", Path: "state.json"},
		Alerts: config.AlertsConfig{
			Telegram: config.TelegramConfig{Enabled: true, Token: "t", ChatID: "1"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{"valid", func(c *config.Config) {}, ""},
		{"missing icao", func(c *config.Config) { c.Aircraft.ICAO = "" }, "aircraft.icao is required"},
		{"short icao", func(c *config.Config) { c.Aircraft.ICAO = "3c644" }, "not a 6-digit hex address"},
		{"non hex icao", func(c *config.Config) { c.Aircraft.ICAO = "3c644z" }, "not a 6-digit hex address"},
		{"missing feed url", func(c *config.Config) { c.Feed.URL = "" }, "feed.url is required"},
		{"zero timeout", func(c *config.Config) { c.Feed.Timeout = 0 }, "feed.timeout must be positive"},
		{"missing token", func(c *config.Config) { c.Alerts.Telegram.Token = "" }, "alerts.telegram.token is required"},
		{"missing chat id", func(c *config.Config) { c.Alerts.Telegram.ChatID = "" }, "alerts.telegram.chat_id is required"},
		{"no sink enabled", func(c *config.Config) { c.Alerts.Telegram = config.TelegramConfig{} }, "at least one alert sink must be enabled"},
		{"slack instead of telegram", func(c *config.Config) {
			c.Alerts.Telegram = config.TelegramConfig{}
			c.Alerts.Slack = config.SlackConfig{Enabled: true, WebhookURL: "https://hooks.example"}
		}, ""},
		{"zero min gs", func(c *config.Config) { c.Aircraft.MinGroundSpeed = 0 }, ""},
		{"slack without url", func(c *config.Config) { c.Alerts.Slack.Enabled = true }, "alerts.slack.webhook_url is required"},
		{"webhook without url", func(c *config.Config) { c.Alerts.Webhook.Enabled = true }, "alerts.webhook.url is required"},
		{"nats without subject", func(c *config.Config) { c.Alerts.NATS = config.NATSConfig{Enabled: true, URL: "nats://x"} }, "alerts.nats.url and alerts.nats.subject"},
		{"bad driver", func(c *config.Config) { c.State.Driver = "redis" }, `state.driver "redis"`},
		{"negative min gs", func(c *config.Config) { c.Aircraft.MinGroundSpeed = -1 }, "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	err := (&config.Config{State: config.StateConfig{Driver: "file", Path: "s"}, Feed: config.FeedConfig{Timeout: time.Second}}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aircraft.icao is required")
	assert.Contains(t, err.Error(), "feed.url is required")
}
