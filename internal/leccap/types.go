// Package leccap provides a client for a lecture capture portal's viewer API.
package leccap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// PlayerPrefix is the path prefix of a recording's player URL. What follows it
// is the recording key used by the metadata endpoint.
const PlayerPrefix = "/leccap/player/r/"

// Key derives the metadata lookup key from a recording URL.
func Key(recordingURL string) string {
	return strings.TrimPrefix(recordingURL, PlayerPrefix)
}

// Recording is one recorded lecture as listed on a course page.
type Recording struct {
	URL     string  `json:"url"` // e.g., "/leccap/player/r/XYZ"
	SortKey SortKey `json:"sortKey"`
	Title   string  `json:"title,omitempty"`
	Section string  `json:"fileUnder,omitempty"`
	Date    string  `json:"date,omitempty"` // "Tuesday, January 9, 2024 • 10:30 AM"
}

// Time returns the clock time part of Date ("10:30 AM"), or "" if Date has none.
func (r *Recording) Time() string {
	_, clock, ok := strings.Cut(r.Date, "•")
	if !ok {
		return ""
	}
	return strings.TrimSpace(clock)
}

// SortKey is the portal's ordering value for a recording. The portal emits it
// as a number or a string; both decode to their textual form, with numbers
// written in plain decimal.
type SortKey string

// UnmarshalJSON implements json.Unmarshaler.
func (k *SortKey) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*k = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*k = SortKey(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("sortKey: %w", err)
		}
		f, err := n.Float64()
		if err != nil {
			return fmt.Errorf("sortKey: %w", err)
		}
		// Render as the portal's player does: 1.0 is "1", 1e2 is "100".
		*k = SortKey(strconv.FormatFloat(f, 'f', -1, 64))
		return nil
	}
}

// DecodeRecordings reads a JSON array of recordings.
func DecodeRecordings(r io.Reader) ([]Recording, error) {
	var recs []Recording
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode recordings: %w", err)
	}
	return recs, nil
}

// Product is the viewer API's description of a recording's media.
type Product struct {
	MediaPrefix string      `json:"mediaPrefix"` // e.g., "//media.example.edu/"
	SiteKey     string      `json:"sitekey"`     // encoding/json also matches "siteKey"
	Info        ProductInfo `json:"info"`
}

// ProductInfo holds the exported movie details of a Product.
type ProductInfo struct {
	MovieExportedName string `json:"movie_exported_name"`
	MovieType         string `json:"movie_type"` // file extension, e.g. "mp4"
}

// MediaURL returns the playable media URL. The parts are joined exactly as
// the portal's player does: https: + prefix + site key + / + name + . + type.
func (p *Product) MediaURL() string {
	return "https:" + p.MediaPrefix + p.SiteKey + "/" + p.Info.MovieExportedName + "." + p.Info.MovieType
}

func (p *Product) validate() error {
	var missing []string
	if p.MediaPrefix == "" {
		missing = append(missing, "mediaPrefix")
	}
	if p.SiteKey == "" {
		missing = append(missing, "sitekey")
	}
	if p.Info.MovieExportedName == "" {
		missing = append(missing, "info.movie_exported_name")
	}
	if p.Info.MovieType == "" {
		missing = append(missing, "info.movie_type")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMalformedMetadata, strings.Join(missing, ", "))
	}
	return nil
}
