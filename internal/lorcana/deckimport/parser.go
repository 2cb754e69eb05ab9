// Package deckimport parses free-text decklists and resolves them against the card catalog.
package deckimport

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/guibruno93/lorcana-companion/internal/lorcana/normalize"
)

// Entry is one parsed decklist line.
type Entry struct {
	Quantity       int    `json:"quantity"`
	RawName        string `json:"raw_name"`
	NormalizedName string `json:"normalized_name"`
	Line           int    `json:"line"` // 1-based line number in the input
}

// SkippedLine is a non-blank line that did not look like "<quantity> <name>".
type SkippedLine struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

// ParseResult contains the entries of a decklist and the lines that were skipped.
type ParseResult struct {
	Entries  []Entry       `json:"entries"`
	Skipped  []SkippedLine `json:"skipped"`
	Quantity int           `json:"quantity"` // Sum of entry quantities
}

// lineRegex matches "4 Card Name": a leading quantity, whitespace, then a name.
var lineRegex = regexp.MustCompile(`^(\d+)\s+(\S.*)$`)

// Parse returns the "<quantity> <name>" entries of a decklist in input order.
// Blank lines are ignored and malformed lines skipped without error; duplicates are kept.
func Parse(text string) []Entry {
	return ParseWithReport(text).Entries
}

// ParseWithReport is Parse that also reports which lines were skipped.
func ParseWithReport(text string) *ParseResult {
	result := &ParseResult{
		Entries: make([]Entry, 0),
		Skipped: make([]SkippedLine, 0),
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		// Skip empty lines
		if line == "" {
			continue
		}

		entry, ok := parseLine(line)
		if !ok {
			result.Skipped = append(result.Skipped, SkippedLine{Line: i + 1, Text: line})
			continue
		}

		entry.Line = i + 1
		result.Entries = append(result.Entries, entry)
		result.Quantity += entry.Quantity
	}

	return result
}

func parseLine(line string) (Entry, bool) {
	matches := lineRegex.FindStringSubmatch(line)
	if matches == nil {
		return Entry{}, false
	}

	quantity, err := strconv.Atoi(matches[1])
	if err != nil || quantity <= 0 {
		return Entry{}, false
	}

	name := strings.TrimSpace(matches[2])
	return Entry{
		Quantity:       quantity,
		RawName:        name,
		NormalizedName: normalize.Key(name),
	}, true
}
