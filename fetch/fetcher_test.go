package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(t *testing.T, opts ...Option) *Fetcher {
	t.Helper()
	f, err := NewFetcher(opts...)
	require.NoError(t, err)
	t.Cleanup(f.Release)
	return f
}

func TestFetch_AllSourcesSucceed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/easa":
			w.Write([]byte("  EASA flight time limitations  \n\n  rest requirements  \n"))
		case "/faa":
			w.Write([]byte("FAA duty period rules"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	f := newTestFetcher(t)
	docs := f.Fetch(context.Background(), []string{
		server.URL + "/easa",
		server.URL + "/faa",
	})

	require.Len(t, docs, 2)
	assert.Equal(t, "doc-1", docs[0].Id)
	assert.Equal(t, server.URL+"/easa", docs[0].Source)
	assert.Equal(t, "EASA flight time limitations\nrest requirements", docs[0].Text)
	assert.Equal(t, "doc-2", docs[1].Id)
	assert.Equal(t, "FAA duty period rules", docs[1].Text)
}

func TestFetch_FailedSourceDropped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/good" {
			w.Write([]byte("reachable regulation"))
			return
		}
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	f := newTestFetcher(t)
	docs := f.Fetch(context.Background(), []string{
		server.URL + "/missing",
		server.URL + "/good",
	})

	// Positional ids survive the dropped source
	require.Len(t, docs, 1)
	assert.Equal(t, "doc-2", docs[0].Id)
	assert.Equal(t, "reachable regulation", docs[0].Text)
}

func TestFetch_EmptySources(t *testing.T) {
	f := newTestFetcher(t)
	assert.Empty(t, f.Fetch(context.Background(), nil))
}

func TestFetch_SendsBrowserUserAgent(t *testing.T) {
	var gotAgent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent.Store(r.Header.Get("User-Agent"))
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := newTestFetcher(t)
	f.Fetch(context.Background(), []string{server.URL})

	agent, _ := gotAgent.Load().(string)
	assert.Contains(t, agent, "Mozilla/5.0")
}

func TestFetch_ConcurrentSources(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("regulation text"))
	}))
	defer server.Close()

	f := newTestFetcher(t, WithPoolSize(8))

	sources := make([]string, 16)
	for i := range sources {
		sources[i] = server.URL
	}
	docs := f.Fetch(context.Background(), sources)

	assert.Len(t, docs, 16)
	assert.Equal(t, int32(16), calls.Load())
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already clean", "a\nb", "a\nb"},
		{"trims lines", "  a  \n\tb\t", "a\nb"},
		{"drops blank lines", "a\n\n\n b\n", "a\nb"},
		{"empty input", "", ""},
		{"whitespace only", "  \n \t \n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeText(tt.in))
		})
	}
}
