package suggest

import (
	"sort"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/ashwch/jarvis/internal/intent"
	"github.com/sahilm/fuzzy"
)

const (
	DefaultLimit = 3
	// MinSimilarity is the edit-distance similarity a candidate needs when it
	// is not a fuzzy subsequence match.
	MinSimilarity = 0.4

	fuzzyBonus = 0.5
)

type Suggestion struct {
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
	Fuzzy      bool    `json:"fuzzy"`
}

func Rank(query string, candidates []string, limit int) []Suggestion {
	if limit <= 0 {
		limit = DefaultLimit
	}
	needle := intent.Normalize(query)
	if needle == "" || len(candidates) == 0 {
		return nil
	}

	normalized := make([]string, len(candidates))
	for i, candidate := range candidates {
		normalized[i] = intent.Normalize(candidate)
	}

	fuzzyScore := map[int]int{}
	for _, match := range fuzzy.Find(needle, normalized) {
		fuzzyScore[match.Index] = match.Score
	}

	type scored struct {
		Suggestion
		index int
		score float64
		fuzz  int
	}
	ranked := make([]scored, 0, len(candidates))
	seen := map[string]struct{}{}
	for i, candidate := range candidates {
		if _, dup := seen[normalized[i]]; dup {
			continue
		}
		seen[normalized[i]] = struct{}{}

		similarity := similarity(needle, normalized[i])
		fuzz, matched := fuzzyScore[i]
		if !matched && similarity < MinSimilarity {
			continue
		}
		score := similarity
		if matched {
			score += fuzzyBonus
		}
		ranked = append(ranked, scored{
			Suggestion: Suggestion{Text: candidate, Similarity: similarity, Fuzzy: matched},
			index:      i,
			score:      score,
			fuzz:       fuzz,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		if ranked[i].fuzz != ranked[j].fuzz {
			return ranked[i].fuzz > ranked[j].fuzz
		}
		return ranked[i].index < ranked[j].index
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]Suggestion, len(ranked))
	for i, item := range ranked {
		out[i] = item.Suggestion
	}
	return out
}

func Texts(suggestions []Suggestion) []string {
	out := make([]string, len(suggestions))
	for i, s := range suggestions {
		out[i] = s.Text
	}
	return out
}

func similarity(a, b string) float64 {
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
