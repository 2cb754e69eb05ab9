// Package export writes comparison reports as CSV or JSON files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/guibruno93/lorcana-companion/internal/meta"
)

// Format represents the export format.
type Format string

const (
	// FormatCSV represents CSV export format.
	FormatCSV Format = "csv"
	// FormatJSON represents JSON export format.
	FormatJSON Format = "json"
)

// FormatFromPath picks the export format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatJSON
}

// Options holds configuration for export operations.
type Options struct {
	Format     Format
	FilePath   string
	PrettyJSON bool
	Overwrite  bool
}

// Exporter handles exporting comparison reports.
type Exporter struct {
	opts Options
}

// NewExporter creates a new Exporter with the given options.
func NewExporter(opts Options) *Exporter {
	return &Exporter{opts: opts}
}

// matchHeader is the CSV column order, one row per ranked match.
var matchHeader = []string{"rank", "deck_id", "score", "similarity", "archetype", "format", "event", "date", "placement", "finish", "cards"}

// Export writes the report to the configured file.
func (e *Exporter) Export(report *meta.CompareReport) (err error) {
	if report == nil {
		return fmt.Errorf("no report to export")
	}

	file, err := e.createFile()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return e.Write(report, file)
}

// Write encodes the report to w in the configured format.
func (e *Exporter) Write(report *meta.CompareReport, w io.Writer) error {
	switch e.opts.Format {
	case FormatCSV:
		return writeCSV(report, w)
	case FormatJSON, "":
		return e.writeJSON(report, w)
	default:
		return fmt.Errorf("unsupported export format: %s", e.opts.Format)
	}
}

func (e *Exporter) writeJSON(report *meta.CompareReport, w io.Writer) error {
	enc := json.NewEncoder(w)
	if e.opts.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

func writeCSV(report *meta.CompareReport, w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(matchHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i, m := range report.Matches {
		finish := ""
		if m.Finish != nil {
			finish = strconv.Itoa(*m.Finish)
		}
		cardCount := 0
		for _, c := range m.Cards {
			cardCount += c.Quantity
		}

		row := []string{
			strconv.Itoa(i + 1),
			m.DeckID,
			strconv.FormatFloat(m.Score, 'f', 1, 64),
			strconv.FormatFloat(m.Similarity, 'f', 4, 64),
			m.Archetype,
			m.Format,
			m.Event,
			m.Date,
			m.Placement,
			finish,
			strconv.Itoa(cardCount),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// createFile creates the output file, refusing to replace an existing one unless Overwrite is set.
func (e *Exporter) createFile() (*os.File, error) {
	if e.opts.FilePath == "" {
		return nil, fmt.Errorf("file path is required")
	}

	if !e.opts.Overwrite {
		if _, err := os.Stat(e.opts.FilePath); err == nil {
			return nil, fmt.Errorf("file already exists: %s (use overwrite option to replace)", e.opts.FilePath)
		}
	}

	if dir := filepath.Dir(e.opts.FilePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(e.opts.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return file, nil
}
