package collect_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"github.com/vmunix/leccap/internal/collect"
	"github.com/vmunix/leccap/internal/collect/mocks"
	"github.com/vmunix/leccap/internal/leccap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// testLogger returns a discard logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func product(name string) *leccap.Product {
	return &leccap.Product{
		MediaPrefix: "//media.example.edu/",
		SiteKey:     "eecs281",
		Info:        leccap.ProductInfo{MovieExportedName: name, MovieType: "mp4"},
	}
}

func recordings(n int) []leccap.Recording {
	recs := make([]leccap.Recording, n)
	for i := range recs {
		recs[i] = leccap.Recording{
			URL:     fmt.Sprintf("/leccap/player/r/key%d", i+1),
			SortKey: leccap.SortKey(fmt.Sprint(i + 1)),
		}
	}
	return recs
}

func TestCollector_Collect_Example(t *testing.T) {
	ctrl := gomock.NewController(t)

	lookup := mocks.NewMockMetadataLookup(ctrl)
	lookup.EXPECT().
		Product(gomock.Any(), "XYZ").
		Return(&leccap.Product{
			MediaPrefix: "p/",
			SiteKey:     "s",
			Info:        leccap.ProductInfo{MovieExportedName: "m", MovieType: "mp4"},
		}, nil)

	c := collect.New(lookup, collect.Options{}, testLogger())
	file, err := c.Collect(context.Background(), []leccap.Recording{
		{URL: "/leccap/player/r/XYZ", SortKey: "1"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Lecture_1.mp4 \"https:p/s/m.mp4\"\n", file.String())
}

func TestCollector_Collect_OneLinePerRecording(t *testing.T) {
	ctrl := gomock.NewController(t)

	lookup := mocks.NewMockMetadataLookup(ctrl)
	lookup.EXPECT().
		Product(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, key string) (*leccap.Product, error) {
			return product(key), nil
		}).
		Times(25)

	recs := recordings(25)
	c := collect.New(lookup, collect.Options{}, testLogger())
	file, err := c.Collect(context.Background(), recs)
	require.NoError(t, err)
	require.Equal(t, 25, file.Len())

	lines := strings.Split(strings.TrimSuffix(file.String(), "\n"), "\n")
	require.Len(t, lines, 25)

	for i, rec := range recs {
		name := "Lecture_" + string(rec.SortKey) + ".mp4"
		assert.Equal(t, name, file.Links[i].Name, "links keep input order")
		assert.Equal(t, "https://media.example.edu/eecs281/key"+string(rec.SortKey)+".mp4", file.Links[i].URL)
	}
}

func TestCollector_Collect_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockMetadataLookup(ctrl)

	c := collect.New(lookup, collect.Options{}, testLogger())
	file, err := c.Collect(context.Background(), nil)

	require.NoError(t, err)
	require.NotNil(t, file)
	assert.Equal(t, 0, file.Len())
	assert.Equal(t, "", file.String())
}

func TestCollector_Collect_FailureAbortsCollection(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"lookup failure", fmt.Errorf("%w: key3: 500 Internal Server Error", leccap.ErrLookupFailure)},
		{"malformed metadata", fmt.Errorf("key3: %w: missing sitekey", leccap.ErrMalformedMetadata)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			lookup := mocks.NewMockMetadataLookup(ctrl)
			lookup.EXPECT().
				Product(gomock.Any(), "key3").
				Return(nil, tt.err)
			lookup.EXPECT().
				Product(gomock.Any(), gomock.Not("key3")).
				DoAndReturn(func(_ context.Context, key string) (*leccap.Product, error) {
					return product(key), nil
				}).
				AnyTimes()

			c := collect.New(lookup, collect.Options{}, testLogger())
			file, err := c.Collect(context.Background(), recordings(5))

			assert.Nil(t, file, "no partial file on failure")
			require.ErrorIs(t, err, tt.err)
			assert.Contains(t, err.Error(), "/leccap/player/r/key3")
		})
	}
}

func TestCollector_Collect_FailureCancelsInFlight(t *testing.T) {
	ctrl := gomock.NewController(t)

	lookup := mocks.NewMockMetadataLookup(ctrl)
	lookup.EXPECT().
		Product(gomock.Any(), "key1").
		Return(nil, leccap.ErrLookupFailure)
	lookup.EXPECT().
		Product(gomock.Any(), gomock.Not("key1")).
		DoAndReturn(func(ctx context.Context, _ string) (*leccap.Product, error) {
			<-ctx.Done() // stalls until the failure cancels the group
			return nil, ctx.Err()
		}).
		Times(3)

	c := collect.New(lookup, collect.Options{}, testLogger())
	file, err := c.Collect(context.Background(), recordings(4))

	assert.Nil(t, file)
	assert.ErrorIs(t, err, leccap.ErrLookupFailure)
}

func TestCollector_Collect_ParentCanceled(t *testing.T) {
	ctrl := gomock.NewController(t)

	lookup := mocks.NewMockMetadataLookup(ctrl)
	lookup.EXPECT().
		Product(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string) (*leccap.Product, error) {
			return nil, ctx.Err()
		}).
		AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := collect.New(lookup, collect.Options{}, testLogger())
	file, err := c.Collect(ctx, recordings(3))

	assert.Nil(t, file)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollector_Collect_Idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)

	lookup := mocks.NewMockMetadataLookup(ctrl)
	lookup.EXPECT().
		Product(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, key string) (*leccap.Product, error) {
			return product(key), nil
		}).
		Times(20)

	c := collect.New(lookup, collect.Options{}, testLogger())
	first, err := c.Collect(context.Background(), recordings(10))
	require.NoError(t, err)
	second, err := c.Collect(context.Background(), recordings(10))
	require.NoError(t, err)

	assert.Equal(t, sortedLines(first.String()), sortedLines(second.String()))
}

func sortedLines(s string) []string {
	lines := strings.Split(s, "\n")
	sort.Strings(lines)
	return lines
}

func TestCollector_Collect_RunsConcurrently(t *testing.T) {
	const n = 8

	// Every lookup waits for all n to be in flight, which only happens if
	// the collector fans out.
	var wg sync.WaitGroup
	wg.Add(n)
	allStarted := make(chan struct{})
	go func() {
		wg.Wait()
		close(allStarted)
	}()

	lookup := lookupFunc(func(ctx context.Context, key string) (*leccap.Product, error) {
		wg.Done()
		select {
		case <-allStarted:
			return product(key), nil
		case <-time.After(5 * time.Second):
			return nil, errors.New("lookups were not concurrent")
		}
	})

	c := collect.New(lookup, collect.Options{}, testLogger())
	file, err := c.Collect(context.Background(), recordings(n))
	require.NoError(t, err)
	assert.Equal(t, n, file.Len())
}

func TestCollector_Collect_ConcurrencyLimit(t *testing.T) {
	var mu sync.Mutex
	inFlight, peak := 0, 0

	lookup := lookupFunc(func(ctx context.Context, key string) (*leccap.Product, error) {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return product(key), nil
	})

	c := collect.New(lookup, collect.Options{Concurrency: 2}, testLogger())
	file, err := c.Collect(context.Background(), recordings(10))
	require.NoError(t, err)
	assert.Equal(t, 10, file.Len())
	assert.LessOrEqual(t, peak, 2)
}

func TestCollector_Collect_FilterAndNaming(t *testing.T) {
	ctrl := gomock.NewController(t)

	lookup := mocks.NewMockMetadataLookup(ctrl)
	lookup.EXPECT().
		Product(gomock.Any(), "B").
		Return(product("b"), nil)

	recs := []leccap.Recording{
		{URL: "/leccap/player/r/A", SortKey: "1", Title: "Intro", Section: "Lecture 001", Date: "Tuesday, January 9, 2024 • 10:30 AM"},
		{URL: "/leccap/player/r/B", SortKey: "2", Title: "Review Session", Section: "Discussion 011", Date: "Friday, January 12, 2024 • 2:31 PM"},
	}

	c := collect.New(lookup, collect.Options{
		Naming: collect.NamingTitle,
		Filter: collect.Filter{Titles: []string{"review"}},
	}, testLogger())
	file, err := c.Collect(context.Background(), recs)
	require.NoError(t, err)
	require.Equal(t, 1, file.Len())
	assert.Equal(t, "Discussion_011_Review_Session_2.31_PM.mp4", file.Links[0].Name)
}

type lookupFunc func(ctx context.Context, key string) (*leccap.Product, error)

func (f lookupFunc) Product(ctx context.Context, key string) (*leccap.Product, error) {
	return f(ctx, key)
}
