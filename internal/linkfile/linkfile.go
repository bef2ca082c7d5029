// Package linkfile models the exported links file: one `<name> "<url>"` line
// per recording.
package linkfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// FileName is the fixed name of the exported file.
const FileName = "links.txt"

// ContentType is the media type of an exported file.
const ContentType = "text/plain; charset=utf-8"

// ErrMalformedLine is returned by Parse for a line that is not a name/URL pair.
var ErrMalformedLine = errors.New("malformed link line")

// Link pairs an output filename with the media URL to fetch into it.
type Link struct {
	Name string
	URL  string
}

// String renders the link as a single line, including the trailing newline.
func (l Link) String() string {
	return l.Name + ` "` + l.URL + `"` + "\n"
}

// File is an ordered set of links.
type File struct {
	Links []Link
}

// Len returns the number of links.
func (f *File) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Links)
}

// String renders every link, one per line. An empty file renders as "".
func (f *File) String() string {
	if f == nil {
		return ""
	}
	var b strings.Builder
	for _, l := range f.Links {
		b.WriteString(l.String())
	}
	return b.String()
}

// WriteTo implements io.WriterTo.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, f.String())
	return int64(n), err
}

// Parse reads links in the exported format. Blank lines and lines starting
// with # are skipped. The URL may be quoted or bare.
func Parse(r io.Reader) ([]Link, error) {
	var links []Link

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		link, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		links = append(links, link)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read links: %w", err)
	}

	return links, nil
}

func parseLine(line string) (Link, error) {
	name, rest, ok := strings.Cut(line, " ")
	if !ok {
		name, rest, ok = strings.Cut(line, "\t")
	}
	rest = strings.TrimSpace(rest)
	if !ok || rest == "" {
		return Link{}, fmt.Errorf("%w: want <name> \"<url>\", got %q", ErrMalformedLine, line)
	}

	url := rest
	if strings.HasPrefix(url, `"`) {
		if len(url) < 2 || !strings.HasSuffix(url, `"`) {
			return Link{}, fmt.Errorf("%w: unterminated quote in %q", ErrMalformedLine, line)
		}
		url = url[1 : len(url)-1]
	}
	if url == "" || strings.ContainsAny(url, " \t\"") {
		return Link{}, fmt.Errorf("%w: bad url in %q", ErrMalformedLine, line)
	}

	return Link{Name: name, URL: url}, nil
}
