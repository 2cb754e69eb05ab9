package meta

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/guibruno93/lorcana-companion/internal/archetype"
	"github.com/guibruno93/lorcana-companion/internal/lorcana/cards"
	"github.com/guibruno93/lorcana-companion/internal/lorcana/cards/fuzzy"
	"github.com/guibruno93/lorcana-companion/internal/lorcana/deckimport"
	"github.com/guibruno93/lorcana-companion/internal/metrics"
)

// ErrCardNotFound is returned by GetCard for unknown catalog IDs.
var ErrCardNotFound = errors.New("card not found")

// Service ties the catalog, the meta corpus and the comparison engine together.
type Service struct {
	catalog   cards.Provider
	corpus    CorpusSource
	fuzzy     fuzzy.Options
	compare   CompareOptions
	estimator cards.CostEstimator
	metrics   *metrics.MetaMetrics
	logger    *slog.Logger
}

// ServiceConfig configures the meta service. Zero values fall back to defaults.
type ServiceConfig struct {
	Catalog   cards.Provider
	Corpus    CorpusSource
	Fuzzy     *fuzzy.Options
	Compare   *CompareOptions
	Estimator cards.CostEstimator
	Metrics   *metrics.MetaMetrics
	Logger    *slog.Logger
}

// NewService creates a new meta service.
func NewService(config *ServiceConfig) *Service {
	if config == nil {
		config = &ServiceConfig{}
	}

	s := &Service{
		catalog:   config.Catalog,
		corpus:    config.Corpus,
		fuzzy:     fuzzy.DefaultOptions(),
		compare:   DefaultCompareOptions(),
		estimator: config.Estimator,
		metrics:   config.Metrics,
		logger:    config.Logger,
	}
	if s.catalog == nil {
		s.catalog = cards.NewUnavailableStatic(nil)
	}
	if s.corpus == nil {
		s.corpus = NewStaticCorpus(nil)
	}
	if config.Fuzzy != nil {
		s.fuzzy = *config.Fuzzy
	}
	if config.Compare != nil {
		s.compare = *config.Compare
	}
	if s.metrics == nil {
		s.metrics = metrics.NewMetaMetrics()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Metrics returns the service's metrics collector.
func (s *Service) Metrics() *metrics.MetaMetrics {
	return s.metrics
}

// CompareDefaults returns the comparison options used when a request does not override them.
func (s *Service) CompareDefaults() CompareOptions {
	return s.compare
}

func (s *Service) index() *cards.Index {
	snap := s.catalog.Current()
	if snap == nil {
		return cards.UnavailableIndex(nil)
	}
	return snap.Index
}

func (s *Service) estimatorFor(index *cards.Index) cards.CostEstimator {
	if s.estimator != nil {
		return s.estimator
	}
	return &cards.CatalogEstimator{Index: index}
}

// ParseDeck splits decklist text into entries without touching the catalog.
func (s *Service) ParseDeck(text string) *deckimport.ParseResult {
	return deckimport.ParseWithReport(text)
}

// ResolveDeck parses text and resolves it against the current catalog. A missing catalog
// is not an error: every line is reported unrecognized.
func (s *Service) ResolveDeck(ctx context.Context, text string) (*deckimport.ResolvedDeck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return s.resolveWith(s.index(), text), nil
}

// resolveWith resolves text against one catalog snapshot.
func (s *Service) resolveWith(index *cards.Index, text string) *deckimport.ResolvedDeck {
	start := time.Now()
	if !index.Available() {
		s.metrics.IncrementCatalogMisses()
	}

	deck := deckimport.NewResolver(index, s.fuzzy, s.estimatorFor(index)).Resolve(text)

	suggestions := 0
	for _, c := range deck.Cards {
		if c.Suggestion != nil {
			suggestions++
		}
	}
	s.metrics.RecordResolve(time.Since(start), deck.RecognizedLines, deck.UnrecognizedLines, suggestions)

	s.logger.Debug("deck resolved",
		"recognized", deck.RecognizedLines,
		"unrecognized", deck.UnrecognizedLines,
		"skipped", deck.SkippedLines)

	return deck
}

// SuggestCard runs the fuzzy resolver for a single name. Like ResolveDeck, a missing
// catalog is not an error: the result has no candidates and CatalogAvailable is false.
func (s *Service) SuggestCard(ctx context.Context, name string) (fuzzy.Result, error) {
	if err := ctx.Err(); err != nil {
		return fuzzy.Result{}, err
	}
	index := s.index()
	if !index.Available() {
		s.metrics.IncrementCatalogMisses()
	}
	return fuzzy.Resolve(name, index, s.fuzzy), nil
}

// SearchCards returns up to limit scored candidates for query. limit <= 0 uses the
// configured resolver limit.
func (s *Service) SearchCards(ctx context.Context, query string, limit int) ([]fuzzy.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	index := s.index()
	if !index.Available() {
		s.metrics.IncrementCatalogMisses()
		return nil, index.Err()
	}

	opts := s.fuzzy
	if limit > 0 {
		opts.Limit = limit
	}
	candidates := fuzzy.Search(query, index, opts)
	if candidates == nil {
		candidates = []fuzzy.Candidate{}
	}
	return candidates, nil
}

// GetCard returns the catalog card with the given ID.
func (s *Service) GetCard(ctx context.Context, id string) (*cards.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	index := s.index()
	if !index.Available() {
		s.metrics.IncrementCatalogMisses()
		return nil, index.Err()
	}
	card, ok := index.ByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	return card, nil
}

// Corpus returns the current corpus, degrading to an empty one when the source fails.
func (s *Service) Corpus(ctx context.Context) (*CorpusSnapshot, error) {
	start := time.Now()
	snap, err := s.corpus.Corpus(ctx)
	s.metrics.RecordCorpusLoad(time.Since(start), err)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.Warn("corpus unavailable, comparing against an empty corpus", "error", err)
		return EmptyCorpus("unavailable"), err
	}
	if snap == nil {
		return EmptyCorpus("empty"), nil
	}
	return snap, nil
}

// CompareRequest asks for the corpus decks closest to a decklist.
// Nil overrides keep the service defaults.
type CompareRequest struct {
	Decklist      string   `json:"decklist"`
	Format        string   `json:"format,omitempty"`
	TopK          *int     `json:"top_k,omitempty"`
	MinSimilarity *float64 `json:"min_similarity,omitempty"`
	MaxFinish     *int     `json:"max_finish,omitempty"`
	AllFormats    bool     `json:"all_formats,omitempty"`
}

// ReportMatch is a ranked corpus deck as exposed to users, with the similarity on a
// 0-100 scale.
type ReportMatch struct {
	DeckID     string     `json:"deck_id"`
	Score      float64    `json:"score"`
	Similarity float64    `json:"similarity"`
	Archetype  string     `json:"archetype,omitempty"`
	Format     string     `json:"format,omitempty"`
	Event      string     `json:"event,omitempty"`
	Date       string     `json:"date,omitempty"`
	Placement  string     `json:"placement,omitempty"`
	Finish     *int       `json:"finish,omitempty"`
	Cards      []DeckCard `json:"cards,omitempty"`
}

// CompareReport is the similarity report for one decklist.
type CompareReport struct {
	Deck            *deckimport.ResolvedDeck `json:"deck"`
	Profile         *archetype.Profile       `json:"profile"`
	Matches         []ReportMatch            `json:"matches"`
	Aggregate       Aggregate                `json:"aggregate"`
	CorpusSize      int                      `json:"corpus_size"`
	CorpusVersion   time.Time                `json:"corpus_version"`
	CorpusAvailable bool                     `json:"corpus_available"`
	Filtered        int                      `json:"filtered"`
	FellBack        bool                     `json:"fell_back"`
}

// Options merges the request overrides into defaults.
func (r *CompareRequest) Options(defaults CompareOptions) CompareOptions {
	opts := defaults
	opts.Format = r.Format
	if r.TopK != nil {
		opts.TopK = *r.TopK
	}
	if r.MinSimilarity != nil {
		opts.MinSimilarity = *r.MinSimilarity
	}
	if r.MaxFinish != nil {
		opts.MaxFinish = r.MaxFinish
	}
	if r.AllFormats {
		opts.SameFormatOnly = false
	}
	return opts
}

// CompareDeck resolves the decklist, vectorizes it and ranks the corpus against it. One
// catalog snapshot serves the whole request.
func (s *Service) CompareDeck(ctx context.Context, req CompareRequest) (*CompareReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	index := s.index()
	deck := s.resolveWith(index, req.Decklist)

	snap, corpusErr := s.Corpus(ctx)
	if snap == nil {
		return nil, corpusErr
	}

	start := time.Now()
	query := Vectorize(EntriesFromResolved(deck), index)
	cmp := Compare(query, snap.Decks, req.Options(s.compare), index)
	s.metrics.RecordCompare(time.Since(start))

	report := &CompareReport{
		Deck:            deck,
		Profile:         archetype.Classify(deck),
		Matches:         make([]ReportMatch, 0, len(cmp.Matches)),
		Aggregate:       cmp.Aggregate,
		CorpusSize:      cmp.CorpusSize,
		CorpusVersion:   snap.Version,
		CorpusAvailable: corpusErr == nil,
		Filtered:        cmp.Filtered,
		FellBack:        cmp.FellBack,
	}
	for _, m := range cmp.Matches {
		report.Matches = append(report.Matches, ReportMatch{
			DeckID:     m.Deck.ID,
			Score:      Score(m.Similarity),
			Similarity: m.Similarity,
			Archetype:  m.Deck.Archetype,
			Format:     m.Deck.Format,
			Event:      m.Deck.Event,
			Date:       m.Deck.Date,
			Placement:  m.Deck.Placement,
			Finish:     m.Finish,
			Cards:      m.Deck.Cards,
		})
	}

	s.logger.Info("deck compared",
		"corpus", cmp.CorpusSize,
		"filtered", cmp.Filtered,
		"matches", len(report.Matches),
		"duration", time.Since(start))

	return report, nil
}

// Score converts a similarity in [0,1] to the 0-100 scale, rounded to one decimal.
func Score(similarity float64) float64 {
	return math.Round(similarity*1000) / 10
}

// Status describes the loaded catalog and corpus.
type Status struct {
	CatalogAvailable bool               `json:"catalog_available"`
	CatalogCards     int                `json:"catalog_cards"`
	CatalogVersion   time.Time          `json:"catalog_version"`
	CatalogStale     bool               `json:"catalog_stale"`
	CatalogError     string             `json:"catalog_error,omitempty"`
	CorpusDecks      int                `json:"corpus_decks"`
	CorpusVersion    time.Time          `json:"corpus_version"`
	CorpusSource     string             `json:"corpus_source,omitempty"`
	CorpusError      string             `json:"corpus_error,omitempty"`
	Metrics          *metrics.MetaStats `json:"metrics"`
}

// Status reports the state of the catalog and corpus.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	status := &Status{}
	if snap := s.catalog.Current(); snap != nil {
		status.CatalogAvailable = snap.Index.Available()
		status.CatalogCards = snap.Index.Len()
		status.CatalogVersion = snap.Version
		status.CatalogStale = snap.Stale()
		if snap.Err != nil {
			status.CatalogError = snap.Err.Error()
		}
	}

	snap, err := s.Corpus(ctx)
	if snap == nil {
		return nil, err
	}
	if err != nil {
		status.CorpusError = err.Error()
	}
	status.CorpusDecks = snap.Len()
	status.CorpusVersion = snap.Version
	status.CorpusSource = snap.Source

	status.Metrics = s.metrics.GetStats()
	return status, nil
}
