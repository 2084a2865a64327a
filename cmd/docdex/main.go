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


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pellucid/docdex"
	"github.com/pellucid/docdex/ai"
	"github.com/pellucid/docdex/chunk"
	"github.com/pellucid/docdex/core"
	"github.com/pellucid/docdex/extract"
	"github.com/pellucid/docdex/fetch"
	"github.com/pellucid/docdex/ingestion"
	"github.com/pellucid/docdex/reembed"
	"github.com/urfave/cli/v2"
)

const defaultCollection = "regulations"

func main() {
	app := &cli.App{
		Name:  "docdex",
		Usage: "Document ingestion and semantic retrieval for regulation compliance",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Fetch, chunk, embed, and index documents from URLs or local files",
				ArgsUsage: "SOURCE [SOURCE...]",
				Action:    ingestCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "collection",
						Aliases: []string{"c"},
						Usage:   "Collection to index into",
						Value:   defaultCollection,
					},
					&cli.IntFlag{
						Name:  "max-tokens",
						Usage: "Chunk window size in tokens",
						Value: chunk.DefaultMaxTokens,
					},
					&cli.IntFlag{
						Name:  "overlap",
						Usage: "Overlap between consecutive chunks in tokens",
						Value: chunk.DefaultOverlapTokens,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of concurrent source fetches",
						Value: fetch.DefaultPoolSize,
					},
					&cli.StringSliceFlag{
						Name:  "meta",
						Usage: "Extra metadata attached to every record, as key=value",
					},
				),
			},
			{
				Name:      "query",
				Usage:     "Search a collection for records similar to the query text",
				ArgsUsage: "QUERY...",
				Action:    queryCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "collection",
						Aliases: []string{"c"},
						Usage:   "Collection to search",
						Value:   defaultCollection,
					},
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of hits to return",
						Value:   5,
					},
				),
			},
			{
				Name:   "extract-rules",
				Usage:  "Extract structured rostering rules from indexed regulations",
				Action: extractRulesCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "collection",
						Aliases: []string{"c"},
						Usage:   "Collection providing the regulation context",
						Value:   defaultCollection,
					},
					&cli.StringFlag{
						Name:  "query",
						Usage: "Retrieval query used to build the extraction context",
						Value: extract.DefaultQuery,
					},
					&cli.IntFlag{
						Name:  "context-chunks",
						Usage: "Number of retrieved chunks joined into the context",
						Value: extract.DefaultContextChunks,
					},
				),
			},
			{
				Name:   "reembed",
				Usage:  "Migrate a collection to a new embedding model",
				Action: reembedCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "collection",
						Aliases: []string{"c"},
						Usage:   "Collection to migrate",
						Value:   defaultCollection,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
			{
				Name:   "stats",
				Usage:  "Show the collections in a database",
				Action: statsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to database directory",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// aiFlags are the flags shared by every command that talks to the
// embedding or extraction services.
func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "https://api.openai.com/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "text-embedding-3-small",
		},
		&cli.StringFlag{
			Name:  "extractor-host",
			Usage: "Extraction service host URL (defaults to embedding-host)",
		},
		&cli.StringFlag{
			Name:  "extractor-model",
			Usage: "Chat model used for rule extraction",
			Value: "gpt-4o-mini",
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key for remote services (\"none\" for unauthenticated servers)",
			EnvVars: []string{"OPENAI_API_KEY"},
			Value:   "none",
		},
	}
}

// aiConfigFromFlags builds the AI configuration from command flags.
func aiConfigFromFlags(c *cli.Context) (*ai.Config, error) {
	extractorHost := c.String("extractor-host")
	if extractorHost == "" {
		extractorHost = c.String("embedding-host")
	}

	config := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithExtractorHost(extractorHost),
		ai.WithExtractorModel(c.String("extractor-model")),
		ai.WithAPIKey(c.String("api-key")),
	)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return config, nil
}

func openDatabase(c *cli.Context) (*docdex.Database, error) {
	config, err := aiConfigFromFlags(c)
	if err != nil {
		return nil, err
	}
	db, err := docdex.NewDatabase(c.String("db"), docdex.WithAIConfig(config))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	sources := c.Args().Slice()
	if len(sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}

	extra, err := parseMeta(c.StringSlice("meta"))
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	chunker, err := chunk.New(
		chunk.WithModel(c.String("embedding-model")),
		chunk.WithMaxTokens(c.Int("max-tokens")),
		chunk.WithOverlap(c.Int("overlap")))
	if err != nil {
		return fmt.Errorf("invalid chunking configuration: %w", err)
	}

	indexer, err := db.NewIndexer(ingestion.WithChunker(chunker))
	if err != nil {
		return err
	}

	docs, err := loadSources(ctx, sources, c.Int("pool-size"))
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("none of the %d sources could be fetched", len(sources))
	}

	result, err := indexer.Upsert(ctx, c.String("collection"), docs, extra)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Printf("Indexed %d documents (%d chunks) into %q via %s embeddings\n",
		result.Documents, result.Chunks, c.String("collection"), result.Source)
	return nil
}

func queryCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.Join(c.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("query text is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return err
	}

	results, err := searcher.Query(ctx, c.String("collection"), query, c.Int("top-k"))
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Printf("%d: [%0.3f] %s\n", i+1, hit.Score, firstLine(hit.Text))
	}
	return nil
}

func extractRulesCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	extractor, err := db.NewRuleExtractor(
		extract.WithQuery(c.String("query")),
		extract.WithContextChunks(c.Int("context-chunks")))
	if err != nil {
		return err
	}

	rules, err := extractor.ExtractRules(ctx, c.String("collection"))
	if err != nil {
		return fmt.Errorf("rule extraction failed: %w", err)
	}

	out, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reembedder, err := db.NewReembedder(c.String("embedding-model"), config, os.Stderr)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(ctx, c.String("collection")); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	// Stats never talk to AI services, so skip the AI configuration
	// and open the store directly.
	db, err := docdex.NewDatabase(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	names, err := db.Store().Collections(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No collections")
		return nil
	}

	for _, name := range names {
		info, err := db.Store().Collection(ctx, name)
		if err != nil {
			return err
		}
		count, err := db.Store().Count(ctx, name)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d records, dimension %d, model %q, created %s\n",
			name, count, info.Dimension, info.Model,
			info.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

// loadSources turns a mixed list of URLs and local file paths into
// documents. URLs are fetched concurrently; files are read in place.
// Ids stay positional across both kinds.
func loadSources(ctx context.Context, sources []string, poolSize int) ([]*core.Document, error) {
	var urls []string
	for _, source := range sources {
		if isURL(source) {
			urls = append(urls, source)
		}
	}

	fetched := make(map[string]*core.Document)
	if len(urls) > 0 {
		fetcher, err := fetch.NewFetcher(fetch.WithPoolSize(poolSize))
		if err != nil {
			return nil, err
		}
		defer fetcher.Release()

		for _, doc := range fetcher.Fetch(ctx, urls) {
			fetched[doc.Source] = doc
		}
	}

	var docs []*core.Document
	for i, source := range sources {
		if isURL(source) {
			if doc, ok := fetched[source]; ok {
				doc.Id = fmt.Sprintf("doc-%d", i+1)
				docs = append(docs, doc)
			}
			continue
		}

		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", source, err)
		}
		docs = append(docs, &core.Document{
			Id:     fmt.Sprintf("doc-%d", i+1),
			Source: source,
			Text:   string(data),
		})
	}
	return docs, nil
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// parseMeta parses key=value flags into a metadata map.
func parseMeta(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	meta := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid metadata %q: expected key=value", pair)
		}
		meta[key] = value
	}
	return meta, nil
}

// firstLine truncates multi-line chunk text for one-line display.
func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx] + " ..."
	}
	return text
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
