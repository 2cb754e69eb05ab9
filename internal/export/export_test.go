package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/guibruno93/lorcana-companion/internal/meta"
)

func intPtr(n int) *int { return &n }

func sampleReport() *meta.CompareReport {
	return &meta.CompareReport{
		Matches: []meta.ReportMatch{
			{
				DeckID: "d1", Score: 87.5, Similarity: 0.875, Archetype: "Amber Steel", Format: "core",
				Event: "Set Championship", Date: "2024-05-04", Placement: "1st", Finish: intPtr(1),
				Cards: []meta.DeckCard{{Name: "Tipo - Growing Son", Quantity: 4}, {Name: "Hades - Infernal Schemer", Quantity: 2}},
			},
			{DeckID: "d2", Score: 40, Similarity: 0.4, Archetype: "Ruby Sapphire, Aggro"},
		},
		CorpusSize: 2,
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := NewExporter(Options{Format: FormatCSV}).Write(sampleReport(), &buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to read CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows (header + 2), got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(matchHeader, ",") {
		t.Errorf("unexpected header: %v", rows[0])
	}

	first := rows[1]
	if first[0] != "1" || first[1] != "d1" || first[2] != "87.5" || first[9] != "1" || first[10] != "6" {
		t.Errorf("unexpected first row: %v", first)
	}

	second := rows[2]
	if second[4] != "Ruby Sapphire, Aggro" {
		t.Errorf("expected quoted archetype to round-trip, got %q", second[4])
	}
	if second[9] != "" {
		t.Errorf("expected empty finish, got %q", second[9])
	}
}

func TestExportJSON(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "nested", "report.json")

	exporter := NewExporter(Options{
		Format:     FormatJSON,
		FilePath:   filePath,
		PrettyJSON: true,
	})
	if err := exporter.Export(sampleReport()); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	var report meta.CompareReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if len(report.Matches) != 2 || report.Matches[0].DeckID != "d1" {
		t.Errorf("unexpected matches: %+v", report.Matches)
	}
}

func TestExportNoOverwrite(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "report.csv")
	if err := os.WriteFile(filePath, []byte("existing"), 0o644); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}

	err := NewExporter(Options{Format: FormatCSV, FilePath: filePath}).Export(sampleReport())
	if err == nil {
		t.Fatal("expected error for existing file")
	}

	err = NewExporter(Options{Format: FormatCSV, FilePath: filePath, Overwrite: true}).Export(sampleReport())
	if err != nil {
		t.Fatalf("overwrite export failed: %v", err)
	}
}

func TestExportErrors(t *testing.T) {
	if err := NewExporter(Options{Format: FormatJSON, FilePath: "x.json"}).Export(nil); err == nil {
		t.Error("expected error for nil report")
	}
	if err := NewExporter(Options{Format: FormatJSON}).Export(sampleReport()); err == nil {
		t.Error("expected error for missing path")
	}

	var buf bytes.Buffer
	if err := NewExporter(Options{Format: "xml"}).Write(sampleReport(), &buf); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"out.csv":  FormatCSV,
		"OUT.CSV":  FormatCSV,
		"out.json": FormatJSON,
		"out":      FormatJSON,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}
