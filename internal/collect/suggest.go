package collect

import (
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/vmunix/leccap/internal/leccap"
)

// minSuggestScore is the lowest Jaro-Winkler similarity worth suggesting.
const minSuggestScore = 0.70

// Suggestion pairs a title filter that matched nothing with the closest
// recording title.
type Suggestion struct {
	Filter string
	Title  string
	Score  float64
}

// Suggest returns, for each title filter that matches no recording, the most
// similar recording title. Filters with no candidate scoring at least 0.70
// are omitted.
func (f Filter) Suggest(recs []leccap.Recording) []Suggestion {
	var out []Suggestion
	for _, want := range f.Titles {
		if want == "" || anyTitleContains(recs, want) {
			continue
		}
		if s, ok := closestTitle(want, recs); ok {
			out = append(out, s)
		}
	}
	return out
}

func anyTitleContains(recs []leccap.Recording, want string) bool {
	for _, rec := range recs {
		if containsAny(rec.Title, []string{want}) {
			return true
		}
	}
	return false
}

func closestTitle(want string, recs []leccap.Recording) (Suggestion, bool) {
	best := Suggestion{Filter: want}
	normalized := strings.ToLower(strings.TrimSpace(want))
	for _, rec := range recs {
		if rec.Title == "" {
			continue
		}
		score := float64(edlib.JaroWinklerSimilarity(normalized, strings.ToLower(rec.Title)))
		if score > best.Score {
			best.Title = rec.Title
			best.Score = score
		}
	}
	return best, best.Score >= minSuggestScore
}
