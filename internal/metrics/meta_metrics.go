package metrics

import (
	"sync/atomic"
	"time"
)

// MetaMetrics tracks deck resolution and corpus comparison activity.
type MetaMetrics struct {
	ResolveLatency    *Histogram
	CompareLatency    *Histogram
	CorpusLoadLatency *Histogram

	DecksResolved     atomic.Uint64
	LinesRecognized   atomic.Uint64
	LinesUnrecognized atomic.Uint64
	FuzzySuggestions  atomic.Uint64
	Comparisons       atomic.Uint64
	CorpusErrors      atomic.Uint64
	CatalogMisses     atomic.Uint64 // operations served without a catalog

	startTime atomic.Pointer[time.Time]
}

// NewMetaMetrics creates a new metrics collector.
func NewMetaMetrics() *MetaMetrics {
	m := &MetaMetrics{
		ResolveLatency:    NewHistogram(0),
		CompareLatency:    NewHistogram(0),
		CorpusLoadLatency: NewHistogram(0),
	}
	now := time.Now()
	m.startTime.Store(&now)
	return m
}

// RecordResolve records one resolved decklist.
func (m *MetaMetrics) RecordResolve(d time.Duration, recognized, unrecognized, suggestions int) {
	m.ResolveLatency.Record(d)
	m.DecksResolved.Add(1)
	m.LinesRecognized.Add(uint64(recognized))
	m.LinesUnrecognized.Add(uint64(unrecognized))
	m.FuzzySuggestions.Add(uint64(suggestions))
}

// RecordCompare records one corpus comparison.
func (m *MetaMetrics) RecordCompare(d time.Duration) {
	m.CompareLatency.Record(d)
	m.Comparisons.Add(1)
}

// RecordCorpusLoad records a corpus fetch and whether it failed.
func (m *MetaMetrics) RecordCorpusLoad(d time.Duration, err error) {
	m.CorpusLoadLatency.Record(d)
	if err != nil {
		m.CorpusErrors.Add(1)
	}
}

// IncrementCatalogMisses counts an operation that ran without a catalog.
func (m *MetaMetrics) IncrementCatalogMisses() {
	m.CatalogMisses.Add(1)
}

// MetaStats is a point-in-time copy of MetaMetrics.
type MetaStats struct {
	ResolveLatency    LatencyStats `json:"resolve_latency"`
	CompareLatency    LatencyStats `json:"compare_latency"`
	CorpusLoadLatency LatencyStats `json:"corpus_load_latency"`

	DecksResolved     uint64  `json:"decks_resolved"`
	LinesRecognized   uint64  `json:"lines_recognized"`
	LinesUnrecognized uint64  `json:"lines_unrecognized"`
	RecognitionRate   float64 `json:"recognition_rate"` // percentage
	FuzzySuggestions  uint64  `json:"fuzzy_suggestions"`
	Comparisons       uint64  `json:"comparisons"`
	CorpusErrors      uint64  `json:"corpus_errors"`
	CatalogMisses     uint64  `json:"catalog_misses"`

	Uptime string `json:"uptime"`
}

// GetStats returns a snapshot of the current statistics.
func (m *MetaMetrics) GetStats() *MetaStats {
	recognized := m.LinesRecognized.Load()
	unrecognized := m.LinesUnrecognized.Load()

	rate := 0.0
	if recognized+unrecognized > 0 {
		rate = float64(recognized) / float64(recognized+unrecognized) * 100
	}

	return &MetaStats{
		ResolveLatency:    m.ResolveLatency.Stats(),
		CompareLatency:    m.CompareLatency.Stats(),
		CorpusLoadLatency: m.CorpusLoadLatency.Stats(),
		DecksResolved:     m.DecksResolved.Load(),
		LinesRecognized:   recognized,
		LinesUnrecognized: unrecognized,
		RecognitionRate:   rate,
		FuzzySuggestions:  m.FuzzySuggestions.Load(),
		Comparisons:       m.Comparisons.Load(),
		CorpusErrors:      m.CorpusErrors.Load(),
		CatalogMisses:     m.CatalogMisses.Load(),
		Uptime:            time.Since(*m.startTime.Load()).Round(time.Second).String(),
	}
}

// Reset clears all metrics.
func (m *MetaMetrics) Reset() {
	m.ResolveLatency.Reset()
	m.CompareLatency.Reset()
	m.CorpusLoadLatency.Reset()

	m.DecksResolved.Store(0)
	m.LinesRecognized.Store(0)
	m.LinesUnrecognized.Store(0)
	m.FuzzySuggestions.Store(0)
	m.Comparisons.Store(0)
	m.CorpusErrors.Store(0)
	m.CatalogMisses.Store(0)

	now := time.Now()
	m.startTime.Store(&now)
}
