// Package charts renders similarity reports as interactive HTML charts.
package charts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/guibruno93/lorcana-companion/internal/meta"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title    string   // Page title
	Width    string   // Chart width (e.g., "900px")
	Height   string   // Chart height (e.g., "500px")
	Theme    string   // Chart theme
	MaxBars  int      // Matches shown in the score chart
	Colors   []string // Series colors
	ShowInks bool     // Include the ink curve of the query deck
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Title:    "Meta similarity report",
		Width:    "900px",
		Height:   "450px",
		Theme:    "light",
		MaxBars:  10,
		Colors:   []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4", "#EA7CCC"},
		ShowInks: true,
	}
}

// DataPoint represents a single data point in a chart.
type DataPoint struct {
	Label string
	Value float64
}

// MatchScores returns one point per match, labelled by archetype and placement.
func MatchScores(report *meta.CompareReport, limit int) []DataPoint {
	points := make([]DataPoint, 0, len(report.Matches))
	for i, m := range report.Matches {
		if limit > 0 && i >= limit {
			break
		}
		label := m.Archetype
		if label == "" {
			label = meta.UnknownArchetype
		}
		if m.Placement != "" {
			label += " (" + m.Placement + ")"
		}
		points = append(points, DataPoint{Label: fmt.Sprintf("%d. %s", i+1, label), Value: m.Score})
	}
	return points
}

// ArchetypeShare returns the archetype breakdown, largest first then by name.
func ArchetypeShare(report *meta.CompareReport) []DataPoint {
	points := make([]DataPoint, 0, len(report.Aggregate.ByArchetype))
	for name, count := range report.Aggregate.ByArchetype {
		points = append(points, DataPoint{Label: name, Value: float64(count)})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Value != points[j].Value {
			return points[i].Value > points[j].Value
		}
		return points[i].Label < points[j].Label
	})
	return points
}

// InkCurve returns the query deck's cost distribution in cost order.
func InkCurve(report *meta.CompareReport) []DataPoint {
	if report.Deck == nil {
		return nil
	}
	costs := make([]int, 0, len(report.Deck.InkCurve))
	for cost := range report.Deck.InkCurve {
		costs = append(costs, cost)
	}
	sort.Ints(costs)

	points := make([]DataPoint, 0, len(costs))
	for _, cost := range costs {
		points = append(points, DataPoint{Label: strconv.Itoa(cost), Value: float64(report.Deck.InkCurve[cost])})
	}
	return points
}

func (c ChartConfig) globalOptions(title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: c.Title,
			Width:     c.Width,
			Height:    c.Height,
			Theme:     c.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithColorsOpts(opts.Colors(c.Colors)),
	}
}

func newBar(points []DataPoint, series string, config ChartConfig, title, subtitle string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(config.globalOptions(title, subtitle)...)

	labels := make([]string, len(points))
	data := make([]opts.BarData, len(points))
	for i, p := range points {
		labels[i] = p.Label
		data[i] = opts.BarData{Value: p.Value}
	}

	bar.SetXAxis(labels).
		AddSeries(series, data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:     opts.Bool(true),
				Position: "top",
			}),
		)
	return bar
}

func newPie(points []DataPoint, series string, config ChartConfig, title string) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(config.globalOptions(title, "")...)

	data := make([]opts.PieData, len(points))
	for i, p := range points {
		data[i] = opts.PieData{Name: p.Label, Value: p.Value}
	}

	pie.AddSeries(series, data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Formatter: "{b}: {c}",
			}),
		)
	return pie
}

// RenderReport writes an HTML page with the match scores, the archetype breakdown of the
// filtered corpus and, optionally, the ink curve of the query deck.
func RenderReport(report *meta.CompareReport, config ChartConfig, w io.Writer) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}
	if len(config.Colors) == 0 {
		config.Colors = DefaultChartConfig().Colors
	}

	page := components.NewPage()
	page.PageTitle = config.Title

	subtitle := fmt.Sprintf("%d corpus decks compared", report.Aggregate.Count)
	page.AddCharts(newBar(MatchScores(report, config.MaxBars), "Similarity", config, "Closest decks", subtitle))

	if len(report.Aggregate.ByArchetype) > 0 {
		page.AddCharts(newPie(ArchetypeShare(report), "Archetypes", config, "Archetypes in the filtered corpus"))
	}

	if config.ShowInks {
		if curve := InkCurve(report); len(curve) > 0 {
			page.AddCharts(newBar(curve, "Cards", config, "Ink curve", "Cards per cost"))
		}
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// WriteReport renders the report into an HTML file at outputPath.
func WriteReport(report *meta.CompareReport, config ChartConfig, outputPath string) (err error) {
	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create chart directory: %w", err)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return RenderReport(report, config, f)
}
