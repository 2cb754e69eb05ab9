package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guibruno93/lorcana-companion/internal/charts"
	"github.com/guibruno93/lorcana-companion/internal/display"
	"github.com/guibruno93/lorcana-companion/internal/export"
	"github.com/guibruno93/lorcana-companion/internal/meta"
)

type compareFlags struct {
	format        string
	top           int
	minSimilarity float64
	maxFinish     int
	allFormats    bool
	chart         string
	exportPath    string
	asJSON        bool
}

func newCompareCmd(a *app) *cobra.Command {
	var f compareFlags

	cmd := &cobra.Command{
		Use:   "compare <file|->",
		Short: "Rank tournament decks by similarity to a decklist",
		Long: `Compare a decklist with the historical tournament corpus.

Decks are ranked by weighted card overlap. The summary covers every deck that
passed the format and finish filters.

Examples:
  lorcana-companion compare deck.txt --format core
  lorcana-companion compare deck.txt --top 5 --max-finish 8 --chart report.html
  lorcana-companion compare - --all-formats --export matches.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readDecklist(cmd, args[0])
			if err != nil {
				return err
			}

			svc, err := a.service()
			if err != nil {
				return err
			}

			req := meta.CompareRequest{
				Decklist:   text,
				Format:     f.format,
				AllFormats: f.allFormats,
			}
			if cmd.Flags().Changed("top") {
				req.TopK = &f.top
			}
			if cmd.Flags().Changed("min-similarity") {
				req.MinSimilarity = &f.minSimilarity
			}
			if cmd.Flags().Changed("max-finish") {
				req.MaxFinish = &f.maxFinish
			}

			report, err := svc.CompareDeck(commandContext(cmd), req)
			if err != nil {
				return fmt.Errorf("compare: %w", err)
			}

			if f.chart != "" {
				if err := charts.WriteReport(report, charts.DefaultChartConfig(), f.chart); err != nil {
					return err
				}
				a.logger.Info("chart written", "path", f.chart)
			}
			if f.exportPath != "" {
				exporter := export.NewExporter(export.Options{
					Format:     export.FormatFromPath(f.exportPath),
					FilePath:   f.exportPath,
					PrettyJSON: true,
					Overwrite:  true,
				})
				if err := exporter.Export(report); err != nil {
					return err
				}
				a.logger.Info("report exported", "path", f.exportPath)
			}

			if f.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			display.Report(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.format, "format", "f", "", "format of the decklist (e.g. core, infinity)")
	cmd.Flags().IntVarP(&f.top, "top", "n", 10, "number of matches to show")
	cmd.Flags().Float64Var(&f.minSimilarity, "min-similarity", 0, "drop matches below this similarity (0-1)")
	cmd.Flags().IntVar(&f.maxFinish, "max-finish", 0, "only decks that finished at or above this placement")
	cmd.Flags().BoolVar(&f.allFormats, "all-formats", false, "compare against every format")
	cmd.Flags().StringVar(&f.chart, "chart", "", "write an HTML chart of the report to this path")
	cmd.Flags().StringVar(&f.exportPath, "export", "", "write the matches to a .csv or .json file")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the report as JSON")

	return cmd
}
