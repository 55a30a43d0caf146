package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"kitmerge/internal/report"
)

func (a *app) historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the merge history stored in PostgreSQL",
	}
	cmd.AddCommand(a.historyExportCmd())
	return cmd
}

func (a *app) historyExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the merge history as TSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			return a.runHistoryExport(format, output)
		},
	}

	cmd.Flags().String("format", "tsv", "Export format: tsv or json")
	cmd.Flags().String("output", "merge_history", "Output path (without extension)")

	return cmd
}

// runHistoryExport handles the `history export` command.
func (a *app) runHistoryExport(format, output string) error {
	if a.cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set, there is no stored history")
	}

	ctx, cancel := setupContext()
	defer cancel()

	store, closeStore, err := openStore(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	switch format {
	case "json":
		if err := report.ExportJSON(ctx, store, output+".json"); err != nil {
			return fmt.Errorf("export JSON: %w", err)
		}
	case "tsv":
		if err := report.ExportTSV(ctx, store, output+".tsv"); err != nil {
			return fmt.Errorf("export TSV: %w", err)
		}
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
	return nil
}
