package fuzzy

import "unicode/utf8"

// minFuzzyTokenLen is the shortest token that may match a near-equal token.
// Shorter words differ too much after a single edit.
const minFuzzyTokenLen = 4

const epsilon = 1e-9

// tokenJaccard is the token-set Jaccard index used for scoring. Beyond exact equality a
// token pair also matches when one side is two adjacent tokens of the other written
// together ("tinkerbell" / "tinker bell"), or when their edit ratio
// reaches similarity. A compound match counts as a single token on the split side.
func tokenJaccard(a, b []string, similarity float64) float64 {
	return overlap(dedupe(a), dedupe(b), similarity, true)
}

func overlap(a, b []string, similarity float64, loose bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	usedA := make([]bool, len(a))
	usedB := make([]bool, len(b))
	sizeA, sizeB := len(a), len(b)
	matched := 0

	for i, ta := range a {
		for j, tb := range b {
			if !usedB[j] && ta == tb {
				usedA[i], usedB[j] = true, true
				matched++
				break
			}
		}
	}

	if loose {
		// One token on the query side written as two on the catalog side.
		for i, ta := range a {
			if usedA[i] {
				continue
			}
			for j := 0; j+1 < len(b); j++ {
				if !usedB[j] && !usedB[j+1] && b[j]+b[j+1] == ta {
					usedA[i], usedB[j], usedB[j+1] = true, true, true
					matched++
					sizeB--
					break
				}
			}
		}

		// And the other way round.
		for j, tb := range b {
			if usedB[j] {
				continue
			}
			for i := 0; i+1 < len(a); i++ {
				if !usedA[i] && !usedA[i+1] && a[i]+a[i+1] == tb {
					usedA[i], usedA[i+1], usedB[j] = true, true, true
					matched++
					sizeA--
					break
				}
			}
		}

		for i, ta := range a {
			if usedA[i] || utf8.RuneCountInString(ta) < minFuzzyTokenLen {
				continue
			}
			best, bestRatio := -1, 0.0
			for j, tb := range b {
				if usedB[j] || utf8.RuneCountInString(tb) < minFuzzyTokenLen {
					continue
				}
				r := LevenshteinRatio(ta, tb)
				if r+epsilon < similarity {
					continue
				}
				if best == -1 || r > bestRatio {
					best, bestRatio = j, r
				}
			}
			if best >= 0 {
				usedA[i], usedB[best] = true, true
				matched++
			}
		}
	}

	union := sizeA + sizeB - matched
	if union <= 0 {
		return 1
	}
	return float64(matched) / float64(union)
}

func dedupe(tokens []string) []string {
	if len(tokens) < 2 {
		return tokens
	}
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
