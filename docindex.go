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

// Package docindex wires the concrete ingestion stack: the PDF processor, the
// corpus aggregator and the BadgerDB index builder, with optional embeddings.
package docindex

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/docindex/aggregate"
	"github.com/poiesic/docindex/ai"
	"github.com/poiesic/docindex/ai/openai"
	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/extract"
	"github.com/poiesic/docindex/index"
	"github.com/poiesic/docindex/ingestion"
)

// Ingestor builds named indexes under a single index root.
type Ingestor struct {
	indexRoot  string
	processor  *extract.PDFProcessor
	aggregator *aggregate.Aggregator
	builder    *index.BadgerBuilder
	logger     *slog.Logger
}

// IngestorOption configures an Ingestor.
type IngestorOption func(*ingestorOptions)

type ingestorOptions struct {
	aiConfig           *ai.Config
	embedder           ai.Embedder
	annotationRequired bool
	logger             *slog.Logger
}

// WithAIConfig enables index-time embeddings through an OpenAI-compatible service.
func WithAIConfig(cfg *ai.Config) IngestorOption {
	return func(o *ingestorOptions) {
		o.aiConfig = cfg
	}
}

// WithEmbedder enables index-time embeddings with the given embedder.
// It takes precedence over WithAIConfig.
func WithEmbedder(embedder ai.Embedder) IngestorOption {
	return func(o *ingestorOptions) {
		o.embedder = embedder
	}
}

// WithAnnotationRequired controls whether a failed annotated copy fails the document.
func WithAnnotationRequired(required bool) IngestorOption {
	return func(o *ingestorOptions) {
		o.annotationRequired = required
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) IngestorOption {
	return func(o *ingestorOptions) {
		o.logger = logger
	}
}

// NewIngestor creates an Ingestor storing indexes under indexRoot.
func NewIngestor(indexRoot string, opts ...IngestorOption) (*Ingestor, error) {
	options := &ingestorOptions{
		annotationRequired: true,
		logger:             slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger

	embedder := options.embedder
	batchSize := 0
	if embedder == nil && options.aiConfig != nil {
		var err error
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			return nil, err
		}
		batchSize = options.aiConfig.BatchSize
	}

	processor, err := extract.NewPDFProcessor(
		extract.WithAnnotationRequired(options.annotationRequired),
		extract.WithLogger(logger.With("component", "pdf-processor")),
	)
	if err != nil {
		return nil, err
	}

	builderOpts := []index.Option{
		index.WithLogger(logger.With("component", "index-builder")),
	}
	if embedder != nil {
		builderOpts = append(builderOpts, index.WithEmbedder(embedder))
	}
	if batchSize > 0 {
		builderOpts = append(builderOpts, index.WithBatchSize(batchSize))
	}
	builder, err := index.NewBadgerBuilder(indexRoot, builderOpts...)
	if err != nil {
		return nil, err
	}

	return &Ingestor{
		indexRoot:  indexRoot,
		processor:  processor,
		aggregator: aggregate.New(aggregate.WithLogger(logger.With("component", "aggregator"))),
		builder:    builder,
		logger:     logger,
	}, nil
}

// NewPipeline creates a pipeline over the Ingestor's components.
// The caller must Release the pipeline.
func (i *Ingestor) NewPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	opts = append([]ingestion.Option{ingestion.WithLogger(i.logger)}, opts...)
	return ingestion.NewPipeline(i.processor, i.aggregator, i.builder, opts...)
}

// Build runs one pipeline: every document in the manifest is processed into
// outputDir and the resulting corpus is committed to the index called name.
func (i *Ingestor) Build(ctx context.Context, manifestPath, outputDir, name string, opts ...ingestion.Option) (*ingestion.Result, error) {
	p, err := i.NewPipeline(opts...)
	if err != nil {
		return nil, err
	}
	defer p.Release()
	return p.Run(ctx, manifestPath, outputDir, name)
}

// IndexInfo describes a stored index.
type IndexInfo struct {
	Meta     *core.IndexMeta
	Passages int
}

// Inspect reports the metadata and passage count of the index called name.
func (i *Ingestor) Inspect(ctx context.Context, name string) (*IndexInfo, error) {
	repo, err := index.Open(i.indexRoot, name)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			i.logger.Error("error closing index", "name", name, "err", err)
		}
	}()

	meta, err := repo.Meta(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", index.ErrIndex, err)
	}
	count, err := repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", index.ErrIndex, err)
	}
	return &IndexInfo{Meta: meta, Passages: count}, nil
}

// IndexPath returns the directory holding the index called name.
func (i *Ingestor) IndexPath(name string) string {
	return i.builder.Path(name)
}
