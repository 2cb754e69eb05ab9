// Package normalize turns card names into the comparable keys every lookup joins on.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes and drops combining diacritical marks.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Key returns the normalized key for a card name.
// The result is lower-case ASCII letters, digits and single spaces.
// Key is total: empty input yields "", and Key(Key(s)) == Key(s).
func Key(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ReplaceAll(text, "\u00a0", " ")

	stripped, _, err := transform.String(stripMarks, text)
	if err == nil {
		text = stripped
	}

	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	space := true // suppresses leading spaces
	for _, r := range text {
		switch {
		case isApostrophe(r):
			continue
		case isDash(r) || unicode.IsSpace(r):
			if !space {
				b.WriteByte(' ')
				space = true
			}
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			space = false
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// Tokens splits a key produced by Key into its words.
func Tokens(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, " ")
}

func isApostrophe(r rune) bool {
	switch r {
	case '\'', '’', '‘', 'ʼ', '`', '´':
		return true
	}
	return false
}

func isDash(r rune) bool {
	switch r {
	case '-', '‐', '‑', '‒', '–', '—', '―', '−', '﹣', '－':
		return true
	}
	return false
}
