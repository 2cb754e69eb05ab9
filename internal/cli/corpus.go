package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/guibruno93/lorcana-companion/internal/meta"
)

func newCorpusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Manage the SQLite tournament corpus",
	}
	cmd.AddCommand(newCorpusImportCmd(a), newCorpusStatsCmd(a))
	return cmd
}

func newCorpusImportCmd(a *app) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import historical decks from a JSON or YAML file",
		Long: `Import historical tournament decks into the corpus database.

Decks are upserted by ID, so importing the same file twice is harmless.
Set corpus.source = "sqlite" in the config to compare against the database.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open corpus file: %w", err)
			}
			decks, err := meta.DecodeCorpus(f, meta.FormatFromPath(path))
			_ = f.Close()
			if err != nil {
				return err
			}

			repo, err := a.openRepository()
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)
			if replace {
				if err := repo.Clear(ctx); err != nil {
					return fmt.Errorf("clear corpus: %w", err)
				}
			}

			n, err := repo.Import(ctx, decks)
			if err != nil {
				return fmt.Errorf("import corpus: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d decks from %s\n", n, path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "delete every stored deck before importing")
	return cmd
}

func newCorpusStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show what the corpus database holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.openRepository()
			if err != nil {
				return err
			}

			stats, err := repo.Stats(commandContext(cmd))
			if err != nil {
				return fmt.Errorf("corpus stats: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Decks: %d\nCards: %d\n", stats.Decks, stats.Cards)
			if !stats.LastImport.IsZero() {
				fmt.Fprintf(out, "Last import: %s\n", stats.LastImport.Format("2006-01-02 15:04:05"))
			}
			printCounts(cmd, "Formats", stats.ByFormat)
			printCounts(cmd, "Archetypes", stats.ByArchetype)
			return nil
		},
	}
}

func printCounts(cmd *cobra.Command, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", title)
	for _, k := range keys {
		name := k
		if name == "" {
			name = "(none)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %-28s %d\n", name, counts[k])
	}
}
