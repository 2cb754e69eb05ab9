// Package cli provides the command-line interface for lorcana-companion.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/guibruno93/lorcana-companion/internal/config"
	"github.com/guibruno93/lorcana-companion/internal/lorcana/cards"
	"github.com/guibruno93/lorcana-companion/internal/meta"
	"github.com/guibruno93/lorcana-companion/internal/storage"
	"github.com/guibruno93/lorcana-companion/internal/storage/repository"
	"github.com/guibruno93/lorcana-companion/internal/version"
)

// app carries state shared by every command of one invocation.
type app struct {
	configPath string
	verbose    bool

	cfg     *config.Config
	logger  *slog.Logger
	closers []func() error

	catalog *cards.Loader
}

// newRootCommand builds the command tree and the state its commands share.
func newRootCommand() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:   "lorcana-companion",
		Short: "Resolve Lorcana decklists and compare them with the tournament meta",
		Long: `lorcana-companion resolves pasted Lorcana decklists against a card catalog,
suggests corrections for misspelled names, and ranks historical tournament decks
by similarity to yours.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "init" {
				return nil
			}
			return a.setup()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default ~/.lorcana-companion/config.toml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newResolveCmd(a),
		newSuggestCmd(a),
		newCompareCmd(a),
		newCorpusCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
	)

	return root, a
}

// Run executes the command line in args and releases everything the command opened.
func Run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	root, a := newRootCommand()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)

	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.close())
}

// Execute runs the command line of the current process.
func Execute() error {
	return Run(context.Background(), os.Args[1:], os.Stdin, os.Stdout)
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	a.cfg = cfg

	logger, closeLog := cfg.Logger()
	a.logger = logger
	a.closers = append(a.closers, closeLog)
	slog.SetDefault(logger)

	return nil
}

func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// catalogLoader returns the lazily created catalog loader.
func (a *app) catalogLoader() *cards.Loader {
	if a.catalog == nil {
		var opts []cards.IndexOption
		if a.cfg.Catalog.PreferNewerSet {
			opts = append(opts, cards.WithPreferNewerSet())
		}
		a.catalog = cards.NewLoader(a.cfg.Catalog.Path, a.logger, opts...)
	}
	return a.catalog
}

// openRepository opens the SQLite corpus store. The database is closed with the app.
func (a *app) openRepository() (repository.CorpusRepository, error) {
	db, err := storage.Open(a.cfg.StorageConfig())
	if err != nil {
		return nil, fmt.Errorf("open corpus database: %w", err)
	}
	a.closers = append(a.closers, db.Close)
	return repository.NewCorpusRepository(db), nil
}

// corpusSource returns the configured corpus source.
func (a *app) corpusSource() (meta.CorpusSource, error) {
	switch a.cfg.Corpus.Source {
	case config.CorpusSourceSQLite:
		return a.openRepository()
	default:
		return meta.NewFileCorpus(a.cfg.Corpus.Path, a.logger), nil
	}
}

// service wires the catalog, corpus and options into a meta service.
func (a *app) service() (*meta.Service, error) {
	corpus, err := a.corpusSource()
	if err != nil {
		return nil, err
	}

	fuzzyOpts := a.cfg.FuzzyOptions()
	compareOpts := a.cfg.CompareOptions()

	return meta.NewService(&meta.ServiceConfig{
		Catalog: a.catalogLoader(),
		Corpus:  corpus,
		Fuzzy:   &fuzzyOpts,
		Compare: &compareOpts,
		Logger:  a.logger,
	}), nil
}

// readDecklist reads a decklist from a file, or stdin when path is "-".
func readDecklist(cmd *cobra.Command, path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read decklist: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.New("decklist is empty")
	}
	return string(data), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
