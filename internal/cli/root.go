package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ogulcanaydogan/airwatch/internal/config"
	"github.com/ogulcanaydogan/airwatch/pkg/alerts"
	"github.com/ogulcanaydogan/airwatch/pkg/feed"
	"github.com/ogulcanaydogan/airwatch/pkg/storage"
	"github.com/ogulcanaydogan/airwatch/pkg/tracker"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "airwatch",
	Short: "airwatch - takeoff alerts for a single aircraft",
	Long: `airwatch polls an ADS-B feed for one aircraft and sends a notification
when it leaves the ground or starts a new flight. Run it from cron or a CI
schedule; state between runs is kept in a small local file or SQLite database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. The caller reports the error and picks the exit code.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.airwatch/config.yaml or ./config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler).With("icao", cfg.Aircraft.ICAO)
}

// initStorage opens the state backend from config.
func initStorage(cfg *config.Config) (storage.Storage, error) {
	return storage.Open(cfg.State.Driver, cfg.State.Path)
}

// initNotifiers creates alert notifiers from config. The returned cleanup
// releases broker connections and is always safe to call.
func initNotifiers(cfg *config.Config) ([]alerts.Notifier, func(), error) {
	var notifiers []alerts.Notifier
	cleanup := func() {}

	if t := cfg.Alerts.Telegram; t.Enabled {
		notifiers = append(notifiers, alerts.NewTelegramNotifier(t.APIURL, t.Token, t.ChatID))
	}

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alerts.NewSlackNotifier(
			cfg.Alerts.Slack.WebhookURL,
			cfg.Alerts.Slack.Channel,
		))
	}

	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alerts.NewWebhookNotifier(
			cfg.Alerts.Webhook.URL,
			cfg.Alerts.Webhook.Secret,
		))
	}

	if n := cfg.Alerts.NATS; n.Enabled {
		pub, err := alerts.NewNATSNotifier(n.URL, n.Subject)
		if err != nil {
			return nil, cleanup, err
		}
		notifiers = append(notifiers, pub)
		cleanup = func() { _ = pub.Close() }
	}

	return notifiers, cleanup, nil
}

// initTracker creates a fully wired tracker. Dry runs get no notifiers so
// nothing is dialled.
func initTracker(cfg *config.Config, logger *slog.Logger, dryRun bool) (*tracker.Tracker, storage.Storage, func(), error) {
	store, err := initStorage(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open state: %w", err)
	}

	var notifiers []alerts.Notifier
	cleanup := func() { _ = store.Close() }
	if !dryRun {
		var closeNotifiers func()
		notifiers, closeNotifiers, err = initNotifiers(cfg)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		cleanup = func() {
			closeNotifiers()
			_ = store.Close()
		}
	}

	fetcher := feed.NewFetcher(cfg.Feed.URL, cfg.Aircraft.ICAO, cfg.Feed.Timeout).
		WithUserAgent("airwatch/" + Version)
	t := tracker.NewTracker(fetcher, store, notifiers, cfg.Aircraft.MinGroundSpeed, logger)

	return t, store, cleanup, nil
}
