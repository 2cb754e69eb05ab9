// Package config loads the companion's TOML configuration and environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/guibruno93/lorcana-companion/internal/lorcana/cards/fuzzy"
	"github.com/guibruno93/lorcana-companion/internal/meta"
	"github.com/guibruno93/lorcana-companion/internal/storage"
)

// Corpus source kinds.
const (
	CorpusSourceFile   = "file"
	CorpusSourceSQLite = "sqlite"
)

// Config represents the application configuration.
type Config struct {
	Catalog    CatalogConfig    `toml:"catalog"`
	Corpus     CorpusConfig     `toml:"corpus"`
	Resolver   ResolverConfig   `toml:"resolver"`
	Similarity SimilarityConfig `toml:"similarity"`
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
	Log        LogConfig        `toml:"log"`
}

// CatalogConfig locates the card catalog.
type CatalogConfig struct {
	Path           string `toml:"path" env:"LORCANA_CATALOG_PATH"`
	Watch          bool   `toml:"watch" env:"LORCANA_CATALOG_WATCH"`                       // Reload on file events
	PreferNewerSet bool   `toml:"prefer_newer_set" env:"LORCANA_CATALOG_PREFER_NEWER_SET"` // Newer printing wins alias collisions
}

// CorpusConfig selects where historical decks come from.
type CorpusConfig struct {
	Source string `toml:"source" env:"LORCANA_CORPUS_SOURCE"` // "file" or "sqlite"
	Path   string `toml:"path" env:"LORCANA_CORPUS_PATH"`     // JSON/YAML file for the file source
}

// ResolverConfig tunes the fuzzy name resolver.
type ResolverConfig struct {
	Limit             int     `toml:"limit" env:"LORCANA_RESOLVER_LIMIT"`
	MinScore          float64 `toml:"min_score" env:"LORCANA_RESOLVER_MIN_SCORE"`
	CommitScore       float64 `toml:"commit_score" env:"LORCANA_RESOLVER_COMMIT_SCORE"`
	CommitFloor       float64 `toml:"commit_floor" env:"LORCANA_RESOLVER_COMMIT_FLOOR"`
	CommitGap         float64 `toml:"commit_gap" env:"LORCANA_RESOLVER_COMMIT_GAP"`
	LevenshteinWeight float64 `toml:"levenshtein_weight" env:"LORCANA_RESOLVER_LEVENSHTEIN_WEIGHT"`
	JaccardWeight     float64 `toml:"jaccard_weight" env:"LORCANA_RESOLVER_JACCARD_WEIGHT"`
	TokenSimilarity   float64 `toml:"token_similarity" env:"LORCANA_RESOLVER_TOKEN_SIMILARITY"`
}

// SimilarityConfig holds the default comparison options.
type SimilarityConfig struct {
	TopK           int     `toml:"top_k" env:"LORCANA_SIMILARITY_TOP_K"`
	SameFormatOnly bool    `toml:"same_format_only" env:"LORCANA_SIMILARITY_SAME_FORMAT_ONLY"`
	MinSimilarity  float64 `toml:"min_similarity" env:"LORCANA_SIMILARITY_MIN_SIMILARITY"`
	MaxCorpus      int     `toml:"max_corpus" env:"LORCANA_SIMILARITY_MAX_CORPUS"`
	TopCut         int     `toml:"top_cut" env:"LORCANA_SIMILARITY_TOP_CUT"`
	MinMatches     int     `toml:"min_matches" env:"LORCANA_SIMILARITY_MIN_MATCHES"`
}

// ServerConfig contains REST API settings.
type ServerConfig struct {
	Host           string   `toml:"host" env:"LORCANA_SERVER_HOST"`
	Port           int      `toml:"port" env:"LORCANA_SERVER_PORT"`
	ReadTimeout    string   `toml:"read_timeout" env:"LORCANA_SERVER_READ_TIMEOUT"`
	WriteTimeout   string   `toml:"write_timeout" env:"LORCANA_SERVER_WRITE_TIMEOUT"`
	RequestTimeout string   `toml:"request_timeout" env:"LORCANA_SERVER_REQUEST_TIMEOUT"`
	CORSOrigins    []string `toml:"cors_origins" env:"LORCANA_SERVER_CORS_ORIGINS" env-separator:","`
	RateLimit      float64  `toml:"rate_limit" env:"LORCANA_SERVER_RATE_LIMIT"` // Requests per second, 0 disables
	RateBurst      int      `toml:"rate_burst" env:"LORCANA_SERVER_RATE_BURST"`
}

// DatabaseConfig contains SQLite corpus store settings.
type DatabaseConfig struct {
	Path        string `toml:"path" env:"LORCANA_DB_PATH"`
	BusyTimeout string `toml:"busy_timeout" env:"LORCANA_DB_BUSY_TIMEOUT"`
	JournalMode string `toml:"journal_mode" env:"LORCANA_DB_JOURNAL_MODE"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level" env:"LORCANA_LOG_LEVEL"` // debug, info, warn, error
	File  string `toml:"file" env:"LORCANA_LOG_FILE"`   // JSON log file; empty logs to stderr only
}

// DataDir returns the directory holding the default catalog, corpus, database and config.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lorcana-companion"
	}
	return filepath.Join(home, ".lorcana-companion")
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	return filepath.Join(DataDir(), "config.toml")
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	dir := DataDir()
	resolver := fuzzy.DefaultOptions()
	compare := meta.DefaultCompareOptions()

	return &Config{
		Catalog: CatalogConfig{
			Path:  filepath.Join(dir, "cards.json"),
			Watch: true,
		},
		Corpus: CorpusConfig{
			Source: CorpusSourceFile,
			Path:   filepath.Join(dir, "corpus.json"),
		},
		Resolver: ResolverConfig{
			Limit:             resolver.Limit,
			MinScore:          resolver.MinScore,
			CommitScore:       resolver.CommitScore,
			CommitFloor:       resolver.CommitFloor,
			CommitGap:         resolver.CommitGap,
			LevenshteinWeight: resolver.LevenshteinWeight,
			JaccardWeight:     resolver.JaccardWeight,
			TokenSimilarity:   resolver.TokenSimilarity,
		},
		Similarity: SimilarityConfig{
			TopK:           compare.TopK,
			SameFormatOnly: compare.SameFormatOnly,
			MinSimilarity:  compare.MinSimilarity,
			MaxCorpus:      compare.MaxCorpus,
			TopCut:         compare.TopCut,
			MinMatches:     compare.MinMatches,
		},
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           8484,
			ReadTimeout:    "15s",
			WriteTimeout:   "30s",
			RequestTimeout: "30s",
			CORSOrigins:    []string{"http://localhost:*", "http://127.0.0.1:*"},
			RateLimit:      20,
			RateBurst:      40,
		},
		Database: DatabaseConfig{
			Path:        filepath.Join(dir, "corpus.db"),
			BusyTimeout: "5s",
			JournalMode: "WAL",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the TOML file at path over the defaults, then applies LORCANA_* environment
// overrides. An empty path means DefaultPath; a missing file yields defaults plus env.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// defaults
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to path as TOML.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	var errs []error

	switch c.Corpus.Source {
	case CorpusSourceFile, CorpusSourceSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown corpus source %q", c.Corpus.Source))
	}

	r := c.Resolver
	for name, v := range map[string]float64{
		"resolver.min_score":          r.MinScore,
		"resolver.commit_score":       r.CommitScore,
		"resolver.commit_floor":       r.CommitFloor,
		"resolver.commit_gap":         r.CommitGap,
		"resolver.levenshtein_weight": r.LevenshteinWeight,
		"resolver.jaccard_weight":     r.JaccardWeight,
		"resolver.token_similarity":   r.TokenSimilarity,
		"similarity.min_similarity":   c.Similarity.MinSimilarity,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0,1]: %v", name, v))
		}
	}
	if r.LevenshteinWeight+r.JaccardWeight == 0 {
		errs = append(errs, errors.New("resolver weights cannot both be zero"))
	}
	if r.CommitFloor > r.CommitScore {
		errs = append(errs, fmt.Errorf("resolver.commit_floor %v exceeds commit_score %v", r.CommitFloor, r.CommitScore))
	}
	if r.Limit < 0 {
		errs = append(errs, fmt.Errorf("resolver.limit cannot be negative: %d", r.Limit))
	}

	s := c.Similarity
	if s.TopK < 0 || s.MaxCorpus < 0 || s.TopCut < 0 || s.MinMatches < 0 {
		errs = append(errs, errors.New("similarity counts cannot be negative"))
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server port: %d", c.Server.Port))
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		errs = append(errs, errors.New("rate limit settings cannot be negative"))
	}
	for name, d := range map[string]string{
		"server.read_timeout":    c.Server.ReadTimeout,
		"server.write_timeout":   c.Server.WriteTimeout,
		"server.request_timeout": c.Server.RequestTimeout,
		"database.busy_timeout":  c.Database.BusyTimeout,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s %q: %w", name, d, err))
		}
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// FuzzyOptions returns the resolver options.
func (c *Config) FuzzyOptions() fuzzy.Options {
	opts := fuzzy.DefaultOptions()
	opts.Limit = c.Resolver.Limit
	opts.MinScore = c.Resolver.MinScore
	opts.CommitScore = c.Resolver.CommitScore
	opts.CommitFloor = c.Resolver.CommitFloor
	opts.CommitGap = c.Resolver.CommitGap
	opts.LevenshteinWeight = c.Resolver.LevenshteinWeight
	opts.JaccardWeight = c.Resolver.JaccardWeight
	opts.TokenSimilarity = c.Resolver.TokenSimilarity
	return opts
}

// CompareOptions returns the default comparison options.
func (c *Config) CompareOptions() meta.CompareOptions {
	return meta.CompareOptions{
		TopK:           c.Similarity.TopK,
		SameFormatOnly: c.Similarity.SameFormatOnly,
		MinSimilarity:  c.Similarity.MinSimilarity,
		MaxCorpus:      c.Similarity.MaxCorpus,
		TopCut:         c.Similarity.TopCut,
		MinMatches:     c.Similarity.MinMatches,
	}
}

// StorageConfig returns the SQLite settings for the corpus store.
func (c *Config) StorageConfig() *storage.Config {
	sc := storage.DefaultConfig(c.Database.Path)
	if d, err := time.ParseDuration(c.Database.BusyTimeout); err == nil {
		sc.BusyTimeout = d
	}
	if c.Database.JournalMode != "" {
		sc.JournalMode = strings.ToUpper(c.Database.JournalMode)
	}
	return sc
}

// Addr returns the server listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetReadTimeout returns the server read timeout as a duration.
func (c *Config) GetReadTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Server.ReadTimeout)
}

// GetWriteTimeout returns the server write timeout as a duration.
func (c *Config) GetWriteTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Server.WriteTimeout)
}

// GetRequestTimeout returns the per-request timeout as a duration.
func (c *Config) GetRequestTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Server.RequestTimeout)
}

// ParseLevel maps a level name to a slog level. Empty means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
}
