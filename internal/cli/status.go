package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ogulcanaydogan/airwatch/pkg/model"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the persisted tracker state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringP("output", "o", "table", "Output format (table, json, yaml)")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")

	store, err := initStorage(cfg)
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	defer store.Close()

	state, err := store.LoadState(cmd.Context())
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	return renderStatus(cmd.OutOrStdout(), output, cfg.State.Driver, cfg.State.Path, state)
}

func renderStatus(w io.Writer, output, driver, path string, state *model.State) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	case "yaml":
		return yaml.NewEncoder(w).Encode(state)
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "STATE\t%s (%s)\n", path, driver)
		fmt.Fprintf(tw, "AIRBORNE\t%t\n", state.Airborne)
		last := state.LastFlightID()
		if last == "" {
			last = "-"
		}
		fmt.Fprintf(tw, "LAST FLIGHT\t%s\n", last)
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}
