package meta

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	placeNumberPattern  = regexp.MustCompile(`^#?\s*(\d+)$`)
	placeOrdinalPattern = regexp.MustCompile(`^(\d+)\s*(?:st|nd|rd|th)(?:\s+place)?$`)
	placeTopPattern     = regexp.MustCompile(`^t(?:op)?\s*(\d+)$`)
	placeRangePattern   = regexp.MustCompile(`^(\d+)\s*[-–]\s*(\d+)(?:st|nd|rd|th)?(?:\s+place)?$`)
	whitespacePattern   = regexp.MustCompile(`\s+`)
)

var namedFinishes = map[string]int{
	"winner":           1,
	"champion":         1,
	"first place":      1,
	"1st place":        1,
	"finalist":         2,
	"runner-up":        2,
	"runner up":        2,
	"runnerup":         2,
	"semifinalist":     4,
	"semi-finalist":    4,
	"semi finalist":    4,
	"quarterfinalist":  8,
	"quarter-finalist": 8,
	"quarter finalist": 8,
}

// ParseFinish converts a placement label to a numeric finish (1 = winner).
// It understands "3", "#12", "2nd", "5th place", "Top 8", "T8", "5-8" (upper bound) and the
// named finishes winner/champion, finalist/runner-up, semifinalist and quarterfinalist.
// Anything else, and any value below 1, yields nil.
func ParseFinish(label string) *int {
	s := strings.ToLower(strings.TrimSpace(label))
	s = whitespacePattern.ReplaceAllString(s, " ")
	if s == "" {
		return nil
	}

	if n, ok := namedFinishes[s]; ok {
		return &n
	}

	for _, p := range []*regexp.Regexp{placeNumberPattern, placeOrdinalPattern, placeTopPattern} {
		if m := p.FindStringSubmatch(s); m != nil {
			return positive(m[1])
		}
	}

	if m := placeRangePattern.FindStringSubmatch(s); m != nil {
		lo, hi := positive(m[1]), positive(m[2])
		if lo == nil || hi == nil {
			return nil
		}
		if *lo > *hi {
			return lo
		}
		return hi
	}

	return nil
}

func positive(digits string) *int {
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}
