package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/guibruno93/lorcana-companion/internal/display"
)

func newResolveCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "resolve <file|->",
		Short: "Resolve a decklist against the card catalog",
		Long: `Resolve every "<quantity> <card name>" line of a decklist against the catalog.

Lines that do not match a card exactly are reported with their closest candidates.
Suggestions are never applied automatically.

Examples:
  lorcana-companion resolve deck.txt
  pbpaste | lorcana-companion resolve - --json`,
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

			deck, err := svc.ResolveDeck(commandContext(cmd), text)
			if err != nil {
				return fmt.Errorf("resolve: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(deck)
			}
			display.Deck(cmd.OutOrStdout(), deck)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the resolved deck as JSON")
	return cmd
}

func newSuggestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest <card name>",
		Short: "Show the catalog cards closest to a name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")

			svc, err := a.service()
			if err != nil {
				return err
			}

			result, err := svc.SuggestCard(commandContext(cmd), name)
			if err != nil {
				return fmt.Errorf("suggest: %w", err)
			}

			display.Suggestions(cmd.OutOrStdout(), name, result)
			return nil
		},
	}
	return cmd
}
