package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ogulcanaydogan/airwatch/internal/config"
	"github.com/ogulcanaydogan/airwatch/pkg/metrics"
	"github.com/ogulcanaydogan/airwatch/pkg/tracker"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Poll the feed once and alert on takeoff",
	Long: `Fetch the feed, decide whether the aircraft is airborne and send a
notification when it took off or started a new flight. State is saved after
every successful run. An empty feed is not an error.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("dry-run", false, "Evaluate without notifying or saving state")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	logger := newLogger(cfg)

	t, _, cleanup, err := initTracker(cfg, logger, dryRun)
	if err != nil {
		return err
	}
	defer cleanup()

	var res *tracker.Result
	if dryRun {
		res, err = t.Evaluate(cmd.Context())
	} else {
		res, err = t.Check(cmd.Context())
		writeMetrics(cfg, res, err, logger)
	}
	if err != nil {
		return err
	}

	printResult(cmd.OutOrStdout(), res, dryRun)
	return nil
}

// writeMetrics exports the run to the textfile collector when configured.
// Export problems never change the run's outcome.
func writeMetrics(cfg *config.Config, res *tracker.Result, runErr error, logger *slog.Logger) {
	if cfg.Metrics.Textfile == "" {
		return
	}
	rec := metrics.NewRecorder(cfg.Aircraft.ICAO)
	rec.Observe(res, runErr)
	if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		logger.Warn("export metrics", "path", cfg.Metrics.Textfile, "error", err)
	}
}

func printResult(w io.Writer, res *tracker.Result, dryRun bool) {
	if res.Outcome == tracker.OutcomeNoData {
		fmt.Fprintln(w, "No aircraft data in feed.")
		return
	}

	snap := res.Snapshot
	fmt.Fprintf(w, "Flight:       %s\n", snap.FlightID)
	fmt.Fprintf(w, "Registration: %s\n", snap.Registration)
	fmt.Fprintf(w, "Altitude:     %s\n", formatReading(snap.Altitude, snap.HasAltitude, "ft"))
	fmt.Fprintf(w, "Ground speed: %s\n", formatReading(snap.GroundSpeed, snap.HasGroundSpeed, "kts"))
	fmt.Fprintf(w, "Airborne:     %t\n", res.Decision.Airborne)

	switch {
	case dryRun && res.Alert != nil:
		fmt.Fprintf(w, "\nWould send %s alert:\n  %s\n", res.Alert.Kind, res.Alert.Message)
	case dryRun:
		fmt.Fprintln(w, "\nNo alert would be sent.")
	case res.Outcome == tracker.OutcomeAlerted:
		fmt.Fprintf(w, "\nAlert sent (%s).\n", res.Alert.Kind)
	}
}

func formatReading(v float64, present bool, unit string) string {
	if !present {
		return "n/a"
	}
	return fmt.Sprintf("%d %s", int64(v), unit)
}
