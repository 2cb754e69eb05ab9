package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, CorpusSourceFile, cfg.Corpus.Source)
	assert.Equal(t, 8, cfg.Similarity.TopCut)
	assert.InDelta(t, 0.82, cfg.Resolver.CommitScore, 1e-9)
	assert.Equal(t, "127.0.0.1:8484", cfg.Addr())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[catalog]
path = "/data/cards.json"

[resolver]
commit_score = 0.9

[similarity]
top_k = 25
same_format_only = false

[server]
port = 9000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/cards.json", cfg.Catalog.Path)
	assert.InDelta(t, 0.9, cfg.Resolver.CommitScore, 1e-9)
	assert.InDelta(t, 0.45, cfg.Resolver.MinScore, 1e-9, "unset keys keep their defaults")
	assert.Equal(t, 25, cfg.Similarity.TopK)
	assert.False(t, cfg.Similarity.SameFormatOnly)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "30s", cfg.Server.RequestTimeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 9000\n"), 0o644))

	t.Setenv("LORCANA_SERVER_PORT", "9100")
	t.Setenv("LORCANA_CORPUS_SOURCE", "sqlite")
	t.Setenv("LORCANA_SERVER_CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, CorpusSourceSQLite, cfg.Corpus.Source)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[resolver]\nmin_score = 1.5\n"), 0o644))
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolver.min_score")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown corpus source", func(c *Config) { c.Corpus.Source = "s3" }, "corpus source"},
		{"zero weights", func(c *Config) { c.Resolver.LevenshteinWeight, c.Resolver.JaccardWeight = 0, 0 }, "weights"},
		{"floor above commit", func(c *Config) { c.Resolver.CommitFloor = 0.95 }, "commit_floor"},
		{"negative top k", func(c *Config) { c.Similarity.TopK = -1 }, "negative"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "port"},
		{"bad timeout", func(c *Config) { c.Server.RequestTimeout = "soon" }, "request_timeout"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Similarity.TopK = 3
	cfg.Log.Level = "debug"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDerivedOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Resolver.Limit = 3
	cfg.Similarity.MinSimilarity = 0.2
	cfg.Database.JournalMode = "delete"
	cfg.Database.BusyTimeout = "2s"

	assert.Equal(t, 3, cfg.FuzzyOptions().Limit)
	assert.InDelta(t, 0.05, cfg.FuzzyOptions().PrefixBonus, 1e-9)
	assert.InDelta(t, 0.2, cfg.CompareOptions().MinSimilarity, 1e-9)

	sc := cfg.StorageConfig()
	assert.Equal(t, cfg.Database.Path, sc.Path)
	assert.Equal(t, "DELETE", sc.JournalMode)
	assert.Equal(t, "2s", sc.BusyTimeout.String())

	timeout, err := cfg.GetRequestTimeout()
	require.NoError(t, err)
	assert.Equal(t, "30s", timeout.String())
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	level, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("deck resolved", "recognized", 2)

	assert.Contains(t, stderr.String(), "deck resolved")
	assert.NotContains(t, stderr.String(), "hidden")
	assert.True(t, strings.HasPrefix(file.String(), "{"), "file output is JSON")
	assert.Contains(t, file.String(), `"recognized":2`)
}

func TestSetupLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "companion.log")

	logger, cleanup := SetupLogger(path, slog.LevelInfo)
	logger.Info("started")
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"started"`)
}
