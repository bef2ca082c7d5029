package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/vmunix/leccap/internal/config"
)

// fakePortal serves the product API and course pages of a lecture capture portal.
type fakePortal struct {
	server   *httptest.Server
	products map[string]string // rk -> JSON body
	pages    map[string]string // path -> HTML
	cookie   string
	calls    atomic.Int32
}

// newFakePortal starts a portal that answers 404 for unknown keys and paths,
// and 401 when a request lacks the expected cookie.
func newFakePortal(t *testing.T, cookie string) *fakePortal {
	t.Helper()
	p := &fakePortal{
		products: make(map[string]string),
		pages:    make(map[string]string),
		cookie:   cookie,
	}
	p.server = httptest.NewServer(http.HandlerFunc(p.serve))
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakePortal) serve(w http.ResponseWriter, r *http.Request) {
	p.calls.Add(1)
	if p.cookie != "" && r.Header.Get("Cookie") != p.cookie {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if r.URL.Path == "/leccap/viewer/api/product/" {
		body, ok := p.products[r.URL.Query().Get("rk")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
		return
	}

	page, ok := p.pages[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = io.WriteString(w, page)
}

// addProduct registers a well-formed product for key.
func (p *fakePortal) addProduct(key, name string) {
	p.products[key] = `{"mediaPrefix":"//media.example.edu/","sitekey":"eecs281","info":{"movie_exported_name":"` + name + `","movie_type":"mp4"}}`
}

// testConfig returns defaults pointed at the fake portal.
func (p *fakePortal) testConfig(outDir string) *config.Config {
	cfg := config.Default()
	cfg.Portal.BaseURL = p.server.URL
	cfg.Portal.SessionCookie = p.cookie
	cfg.Collect.OutputDir = outDir
	cfg.Download.Dir = outDir
	return cfg
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func recordingsJSON(keys ...string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = `{"url":"/leccap/player/r/` + k + `","sortKey":` + string(rune('1'+i)) + `}`
	}
	return "[" + strings.Join(parts, ",") + "]"
}
