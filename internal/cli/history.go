package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ogulcanaydogan/airwatch/pkg/model"
	"github.com/ogulcanaydogan/airwatch/pkg/storage"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List alerts that were sent",
	Long:  `List delivered alerts, newest first. Requires state.driver: sqlite.`,
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of alerts to show (0 for all)")
	historyCmd.Flags().StringP("output", "o", "table", "Output format (table, json, yaml)")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	output, _ := cmd.Flags().GetString("output")

	store, err := initStorage(cfg)
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	defer store.Close()

	log, ok := store.(storage.AlertLog)
	if !ok {
		return fmt.Errorf("state driver %q keeps no alert history; use %q", cfg.State.Driver, storage.DriverSQLite)
	}

	records, err := log.ListAlerts(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("list alerts: %w", err)
	}

	return renderHistory(cmd.OutOrStdout(), output, records)
}

func renderHistory(w io.Writer, output string, records []model.AlertRecord) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "yaml":
		return yaml.NewEncoder(w).Encode(records)
	case "table", "":
	default:
		return fmt.Errorf("unknown output format %q", output)
	}

	if len(records) == 0 {
		fmt.Fprintln(w, "No alerts recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "SENT\tKIND\tFLIGHT\tREGISTRATION\tALT\tGS\n")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n",
			r.SentAt.UTC().Format("2006-01-02 15:04"),
			r.Kind, r.FlightID, r.Registration,
			r.AltitudeFt, r.GroundSpeedKts,
		)
	}
	return tw.Flush()
}
