package collect

import (
	"strings"
	"time"

	"github.com/vmunix/leccap/internal/leccap"
)

// DefaultTimeTolerance is how far apart a recording's start time and a time
// filter may be and still match.
const DefaultTimeTolerance = 10 * time.Minute

const clockLayout = "3:04 PM"

// Filter keeps recordings whose title or section contains one of Titles or
// Sections (case-insensitive), or whose start time is near one of Times.
// An empty Filter keeps everything.
type Filter struct {
	Titles    []string
	Sections  []string
	Times     []string // "10:30 AM"
	Tolerance time.Duration
}

// Empty reports whether the filter has no criteria.
func (f Filter) Empty() bool {
	return len(f.Titles) == 0 && len(f.Sections) == 0 && len(f.Times) == 0
}

// Match reports whether rec passes the filter.
func (f Filter) Match(rec leccap.Recording) bool {
	if f.Empty() {
		return true
	}
	return containsAny(rec.Title, f.Titles) ||
		containsAny(rec.Section, f.Sections) ||
		f.timeClose(rec.Time())
}

// Apply returns the recordings that pass the filter, in order.
func (f Filter) Apply(recs []leccap.Recording) []leccap.Recording {
	if f.Empty() {
		return recs
	}
	kept := make([]leccap.Recording, 0, len(recs))
	for _, rec := range recs {
		if f.Match(rec) {
			kept = append(kept, rec)
		}
	}
	return kept
}

func containsAny(value string, subs []string) bool {
	if value == "" {
		return false
	}
	value = strings.ToLower(value)
	for _, s := range subs {
		if s != "" && strings.Contains(value, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

func (f Filter) timeClose(clock string) bool {
	if clock == "" || len(f.Times) == 0 {
		return false
	}
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return false
	}

	tolerance := f.Tolerance
	if tolerance == 0 {
		tolerance = DefaultTimeTolerance
	}

	for _, want := range f.Times {
		w, err := time.Parse(clockLayout, strings.TrimSpace(want))
		if err != nil {
			continue
		}
		d := t.Sub(w)
		if d < 0 {
			d = -d
		}
		if d <= tolerance {
			return true
		}
	}
	return false
}
