// Copyright 2025 Pellucid Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pellucid/docdex/core"
)

const (
	// DefaultTimeout bounds a single source fetch.
	DefaultTimeout = 30 * time.Second

	// DefaultPoolSize is the number of concurrent fetches.
	DefaultPoolSize = 4

	// Some regulation hosts reject requests without a browser agent.
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// Fetcher downloads documents from remote sources concurrently.
type Fetcher struct {
	client   *http.Client
	pool     *ants.Pool
	poolSize int
	logger   *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher) error

// WithHTTPClient sets a custom HTTP client.
// Default is a client with DefaultTimeout.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) error {
		if client != nil {
			f.client = client
		}
		return nil
	}
}

// WithPoolSize sets the worker pool size for concurrent fetches.
// Default is DefaultPoolSize, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(f *Fetcher) error {
		if size < 1 {
			size = 1
		}
		f.poolSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// NewFetcher creates a new fetcher.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		client:   &http.Client{Timeout: DefaultTimeout},
		poolSize: DefaultPoolSize,
		logger:   slog.Default().With("component", "fetcher"),
	}

	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}

	pool, err := ants.NewPool(f.poolSize)
	if err != nil {
		return nil, err
	}
	f.pool = pool

	return f, nil
}

// Release shuts down the worker pool.
func (f *Fetcher) Release() {
	f.pool.Release()
}

// Fetch downloads all sources and returns the documents that could be
// retrieved, in source order. Failed sources are logged and dropped.
// Document ids are positional, "doc-1" for the first source, so that
// a source list produces stable ids across runs.
func (f *Fetcher) Fetch(ctx context.Context, sources []string) []*core.Document {
	if len(sources) == 0 {
		return nil
	}

	docs := make([]*core.Document, len(sources))
	var wg sync.WaitGroup

	for i, source := range sources {
		wg.Add(1)
		err := f.pool.Submit(func() {
			defer wg.Done()

			text, err := f.fetchOne(ctx, source)
			if err != nil {
				f.logger.Warn("failed to fetch source, skipping", "source", source, "err", err)
				return
			}
			docs[i] = &core.Document{
				Id:     fmt.Sprintf("doc-%d", i+1),
				Source: source,
				Text:   text,
			}
		})
		if err != nil {
			// Pool is released or overloaded; count the slot back down
			wg.Done()
			f.logger.Warn("failed to submit fetch task", "source", source, "err", err)
		}
	}
	wg.Wait()

	fetched := make([]*core.Document, 0, len(docs))
	for _, doc := range docs {
		if doc != nil && doc.Text != "" {
			fetched = append(fetched, doc)
		}
	}

	f.logger.Info("fetched sources", "requested", len(sources), "retrieved", len(fetched))
	return fetched
}

// fetchOne downloads a single source and normalizes its text.
func (f *Fetcher) fetchOne(ctx context.Context, source string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return normalizeText(string(body)), nil
}

// normalizeText trims each line and drops empty lines, collapsing the
// ragged whitespace of fetched pages into a compact text block.
func normalizeText(raw string) string {
	lines := strings.Split(raw, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
