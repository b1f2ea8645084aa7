// Copyright 2025 Poiesic Systems
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
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/poiesic/docindex"
	"github.com/poiesic/docindex/ai"
	"github.com/poiesic/docindex/extract"
	"github.com/poiesic/docindex/ingestion"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	indexRootFlag := &cli.StringFlag{
		Name:    "index-root",
		Aliases: []string{"r"},
		Usage:   "Directory holding named indexes",
		Value:   "indexes",
		EnvVars: []string{"DOCINDEX_INDEX_ROOT"},
	}

	return &cli.App{
		Name:  "docindex",
		Usage: "Extract passages from PDF documents and build a named passage index",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"DOCINDEX_LOG_LEVEL"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "build",
				Usage:     "Process every document in a manifest and build an index from the passages",
				ArgsUsage: "<manifest> <output-dir> <index-name>",
				Action:    buildCommand,
				Flags: []cli.Flag{
					indexRootFlag,
					&cli.IntFlag{
						Name:    "chunk-size",
						Usage:   "Maximum passage size in characters",
						Value:   extract.DefaultChunkSize,
						EnvVars: []string{"DOCINDEX_CHUNK_SIZE"},
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Number of documents processed concurrently",
						Value:   1,
						EnvVars: []string{"DOCINDEX_WORKERS"},
					},
					&cli.BoolFlag{
						Name:  "continue-on-error",
						Usage: "Skip documents that fail to process instead of stopping the build",
					},
					&cli.BoolFlag{
						Name:  "annotation-optional",
						Usage: "Keep a document's passages even if its annotated copy cannot be written",
					},
					&cli.StringFlag{
						Name:  "ordering",
						Usage: "Passage files to aggregate: manifest (files from this run, in manifest order) or directory (every passage file, sorted by name)",
						Value: "manifest",
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Show a live progress line on stderr",
					},
					&cli.StringFlag{
						Name:    "embedding-host",
						Usage:   "Embedding service host URL (embeddings are enabled when embedding-model is set)",
						Value:   "http://localhost:11434/v1",
						EnvVars: []string{"DOCINDEX_EMBEDDING_HOST"},
					},
					&cli.StringFlag{
						Name:    "embedding-model",
						Usage:   "Embedding model name; leave empty to index without vectors",
						EnvVars: []string{"DOCINDEX_EMBEDDING_MODEL"},
					},
					&cli.IntFlag{
						Name:  "embedding-batch-size",
						Usage: "Number of passages per embedding request",
						Value: 32,
					},
				},
			},
			{
				Name:      "stats",
				Usage:     "Show the metadata of a built index",
				ArgsUsage: "<index-name>",
				Action:    statsCommand,
				Flags:     []cli.Flag{indexRootFlag},
			},
		},
	}
}

func buildCommand(c *cli.Context) error {
	if c.NArg() != 3 {
		return fmt.Errorf("build requires 3 arguments: <manifest> <output-dir> <index-name>, got %d", c.NArg())
	}
	manifestPath, outputDir, indexName := c.Args().Get(0), c.Args().Get(1), c.Args().Get(2)

	pipelineOpts, err := pipelineOptions(c)
	if err != nil {
		return err
	}

	ingestorOpts := []docindex.IngestorOption{
		docindex.WithAnnotationRequired(!c.Bool("annotation-optional")),
		docindex.WithLogger(slog.Default()),
	}
	if model := c.String("embedding-model"); model != "" {
		aiConfig := ai.NewConfig(
			ai.WithEmbeddingHost(c.String("embedding-host")),
			ai.WithEmbeddingModel(model),
			ai.WithBatchSize(c.Int("embedding-batch-size")),
		)
		if err := aiConfig.Validate(); err != nil {
			return fmt.Errorf("invalid AI configuration: %w", err)
		}
		ingestorOpts = append(ingestorOpts, docindex.WithAIConfig(aiConfig))
	}

	ingestor, err := docindex.NewIngestor(c.String("index-root"), ingestorOpts...)
	if err != nil {
		return fmt.Errorf("failed to create ingestor: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := ingestor.Build(ctx, manifestPath, outputDir, indexName, pipelineOpts...)
	if res != nil && res.State != ingestion.StateStart {
		printSummary(c.App.Writer, res, indexName)
	}
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	return nil
}

func pipelineOptions(c *cli.Context) ([]ingestion.Option, error) {
	opts := []ingestion.Option{
		ingestion.WithChunkSize(c.Int("chunk-size")),
		ingestion.WithWorkers(c.Int("workers")),
	}
	if c.Bool("continue-on-error") {
		opts = append(opts, ingestion.WithFailurePolicy(ingestion.ContinueOnError))
	}
	switch strings.ToLower(c.String("ordering")) {
	case "manifest":
		opts = append(opts, ingestion.WithSourceOrdering(ingestion.OrderManifest))
	case "directory":
		opts = append(opts, ingestion.WithSourceOrdering(ingestion.OrderDirectory))
	default:
		return nil, fmt.Errorf("invalid ordering %q: must be one of manifest, directory", c.String("ordering"))
	}
	if c.Bool("progress") {
		opts = append(opts, ingestion.WithProgress(c.App.ErrWriter))
	}
	return opts, nil
}

func printSummary(w io.Writer, res *ingestion.Result, indexName string) {
	if w == nil {
		w = os.Stdout
	}
	if res.State == ingestion.StateAborted {
		fmt.Fprintf(w, "Nothing indexed: %s\n", res.Reason)
		return
	}
	failures := res.Failures()
	fmt.Fprintf(w, "Documents: %d processed, %d failed\n", len(res.Succeeded()), len(failures))
	for _, f := range failures {
		fmt.Fprintf(w, "  failed: %s: %v\n", f.Source, f.Err)
	}
	fmt.Fprintf(w, "Passages: %d\n", res.Passages())
	if res.CorpusPath != "" {
		fmt.Fprintf(w, "Corpus: %s (%d lines)\n", res.CorpusPath, res.CorpusLines)
	}
	if res.Index != nil {
		fmt.Fprintf(w, "Index: %s at %s (%d passages, %d documents)\n",
			indexName, res.Index.Path, res.Index.Passages, res.Index.Documents)
	}
	fmt.Fprintf(w, "Elapsed: %s\n", res.Elapsed.Round(time.Millisecond))
}

func statsCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("stats requires 1 argument: <index-name>, got %d", c.NArg())
	}
	name := c.Args().First()

	ingestor, err := docindex.NewIngestor(c.String("index-root"))
	if err != nil {
		return fmt.Errorf("failed to create ingestor: %w", err)
	}
	info, err := ingestor.Inspect(c.Context, name)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Index: %s\n", info.Meta.Name)
	fmt.Fprintf(w, "Path: %s\n", ingestor.IndexPath(name))
	fmt.Fprintf(w, "Corpus: %s\n", info.Meta.Corpus)
	fmt.Fprintf(w, "Passages: %d\n", info.Passages)
	fmt.Fprintf(w, "Documents: %d\n", info.Meta.Documents)
	fmt.Fprintf(w, "Embedded: %t\n", info.Meta.Embedded)
	fmt.Fprintf(w, "Built: %s\n", info.Meta.BuiltAt.Format("2006-01-02 15:04:05 MST"))
	return nil
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
