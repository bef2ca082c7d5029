package collect

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/vmunix/leccap/internal/leccap"
)

// Naming selects how output filenames are built.
type Naming string

const (
	// NamingSortKey names files Lecture_<sortKey>.mp4.
	NamingSortKey Naming = "sortkey"
	// NamingTitle names files <section>_<title>_<time>.mp4.
	NamingTitle Naming = "title"
)

// ParseNaming validates a naming scheme name.
func ParseNaming(s string) (Naming, error) {
	switch n := Naming(strings.ToLower(s)); n {
	case NamingSortKey, NamingTitle:
		return n, nil
	case "":
		return NamingSortKey, nil
	default:
		return "", fmt.Errorf("unknown naming scheme %q (want sortkey or title)", s)
	}
}

// Name returns the output filename for a recording.
func (n Naming) Name(rec leccap.Recording) string {
	if n == NamingTitle {
		return SanitizeFilename(rec.Section) + "_" +
			SanitizeFilename(rec.Title) + "_" +
			SanitizeFilename(rec.Time()) + ".mp4"
	}
	return "Lecture_" + string(rec.SortKey) + ".mp4"
}

// allowedChars are the POSIX portable filename characters.
const allowedChars = ".-_0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// SanitizeFilename restricts name to POSIX portable filename characters.
// Accents are dropped first, then spaces become "_", "/" becomes "-" and
// anything else becomes ".".
func SanitizeFilename(name string) string {
	name = removeAccents(name)
	return strings.Map(func(r rune) rune {
		switch {
		case strings.ContainsRune(allowedChars, r):
			return r
		case r == ' ':
			return '_'
		case r == '/':
			return '-'
		default:
			return '.'
		}
	}, name)
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}
