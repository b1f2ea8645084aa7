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

package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docindex/aggregate"
	"github.com/poiesic/docindex/extract"
	"github.com/poiesic/docindex/index"
	"github.com/poiesic/docindex/manifest"
)

// Aggregator merges passage files into the corpus file.
type Aggregator interface {
	AggregateWithStats(ctx context.Context, outputDir string, files []string) (string, *aggregate.Stats, error)
}

var _ Aggregator = (*aggregate.Aggregator)(nil)

// Pipeline drives a build: read the manifest, process every document,
// aggregate the passage files and build the index.
type Pipeline struct {
	processor  extract.Processor
	aggregator Aggregator
	builder    index.Builder
	pool       *ants.Pool
	workers    int
	chunkSize  int
	policy     FailurePolicy
	ordering   SourceOrdering
	progress   io.Writer
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithWorkers sets how many documents are processed concurrently.
// With one worker (the default) documents are processed strictly in manifest order.
func WithWorkers(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			n = 1
		}
		if p.pool != nil {
			p.pool.Release()
			p.pool = nil
		}
		p.workers = n
		if n == 1 {
			return nil
		}
		pool, err := ants.NewPool(n)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithChunkSize sets the maximum passage size in characters.
// Default is extract.DefaultChunkSize.
func WithChunkSize(size int) Option {
	return func(p *Pipeline) error {
		if size <= 0 {
			return ErrInvalidChunkSize
		}
		p.chunkSize = size
		return nil
	}
}

// WithFailurePolicy sets what happens when a document fails. Default is FailFast.
func WithFailurePolicy(policy FailurePolicy) Option {
	return func(p *Pipeline) error {
		p.policy = policy
		return nil
	}
}

// WithSourceOrdering sets which passage files are aggregated. Default is OrderManifest.
func WithSourceOrdering(ordering SourceOrdering) Option {
	return func(p *Pipeline) error {
		p.ordering = ordering
		return nil
	}
}

// WithProgress writes a live progress line to w while documents are processed.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a pipeline from its three collaborators.
func NewPipeline(processor extract.Processor, aggregator Aggregator, builder index.Builder, opts ...Option) (*Pipeline, error) {
	if processor == nil {
		return nil, ErrProcessorRequired
	}
	if aggregator == nil {
		return nil, ErrAggregatorRequired
	}
	if builder == nil {
		return nil, ErrBuilderRequired
	}

	p := &Pipeline{
		processor:  processor,
		aggregator: aggregator,
		builder:    builder,
		workers:    1,
		chunkSize:  extract.DefaultChunkSize,
		policy:     FailFast,
		ordering:   OrderManifest,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}
	return p, nil
}

// Release releases the worker pool. The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
		p.pool = nil
	}
}

// Run executes one build. Manifest, processing (fail-fast), aggregation and
// index failures are returned as errors wrapping ErrManifest, ErrProcessing,
// ErrAggregation and ErrIndex respectively; an invalid index name fails with
// ErrIndex before the manifest is read. A manifest without sources, or a
// run in which no document succeeded, ends in StateAborted with a nil error.
func (p *Pipeline) Run(ctx context.Context, manifestPath, outputDir, indexName string) (*Result, error) {
	start := time.Now()
	res := &Result{State: StateStart}
	defer func() { res.Elapsed = time.Since(start) }()

	if err := index.ValidateName(indexName); err != nil {
		return res, fmt.Errorf("%w: %w", ErrIndex, err)
	}

	sources, err := manifest.Read(manifestPath)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrManifest, err)
	}
	res.State = StateManifestRead

	if len(sources) == 0 {
		p.logger.Info("no sources found", "manifest", manifestPath)
		res.State = StateAborted
		res.Reason = ReasonNoSources
		return res, nil
	}

	sources, dups := manifest.Dedupe(sources)
	for _, dup := range dups {
		p.logger.Warn("duplicate source ignored", "source", dup)
	}
	if err := manifest.CheckBaseNames(sources); err != nil {
		return res, fmt.Errorf("%w: %w", ErrManifest, err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return res, fmt.Errorf("%w: create output directory: %w", ErrProcessing, err)
	}

	res.State = StateProcessing
	docs, err := p.processAll(ctx, sources, outputDir)
	res.Documents = docs
	if err != nil {
		return res, err
	}

	succeeded := res.Succeeded()
	if len(succeeded) == 0 {
		p.logger.Warn("no documents processed successfully", "failed", len(res.Failures()))
		res.State = StateAborted
		res.Reason = ReasonNoSuccessfulDocuments
		return res, nil
	}

	res.State = StateAggregating
	files, err := p.passageFiles(outputDir, succeeded)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrAggregation, err)
	}
	corpus, stats, err := p.aggregator.AggregateWithStats(ctx, outputDir, files)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrAggregation, err)
	}
	res.CorpusPath = corpus
	res.CorpusLines = stats.Lines
	p.logger.Info("aggregated passages", "corpus", corpus, "files", stats.Files, "passages", stats.Lines)

	res.State = StateIndexing
	indexStats, err := p.builder.Build(ctx, corpus, indexName)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrIndex, err)
	}
	res.Index = indexStats
	p.logger.Info("indexed passages", "index", indexName, "passages", indexStats.Passages)

	res.State = StateDone
	return res, nil
}

// passageFiles lists the files to aggregate according to the source ordering.
func (p *Pipeline) passageFiles(outputDir string, succeeded []DocumentResult) ([]string, error) {
	if p.ordering == OrderDirectory {
		return aggregate.Collect(outputDir)
	}
	files := make([]string, len(succeeded))
	for i, d := range succeeded {
		files[i] = d.PassageFile
	}
	return files, nil
}

// processAll processes every source and returns the results in manifest order.
func (p *Pipeline) processAll(ctx context.Context, sources []string, outputDir string) ([]DocumentResult, error) {
	var tracker *ProgressTracker
	if p.progress != nil {
		tracker = NewProgressTracker(p.progress, len(sources))
		tracker.Start()
		defer tracker.Finish()
	}

	if p.pool == nil {
		return p.processSequential(ctx, sources, outputDir, tracker)
	}
	return p.processParallel(ctx, sources, outputDir, tracker)
}

func (p *Pipeline) processSequential(ctx context.Context, sources []string, outputDir string, tracker *ProgressTracker) ([]DocumentResult, error) {
	results := make([]DocumentResult, 0, len(sources))
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result := p.processOne(ctx, source, outputDir, tracker)
		results = append(results, result)
		if result.Skipped {
			return results, result.Err
		}
		if result.Err != nil && p.policy == FailFast {
			return results, fmt.Errorf("%w: %w", ErrProcessing, result.Err)
		}
	}
	return results, nil
}

func (p *Pipeline) processParallel(ctx context.Context, sources []string, outputDir string, tracker *ProgressTracker) ([]DocumentResult, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]DocumentResult, len(sources))
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)

	for i, source := range sources {
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			if runCtx.Err() != nil {
				results[i] = DocumentResult{Source: source, Err: runCtx.Err(), Skipped: true}
				return
			}
			results[i] = p.processOne(runCtx, source, outputDir, tracker)
			if results[i].Err != nil && !results[i].Skipped && p.policy == FailFast {
				once.Do(func() {
					firstErr = results[i].Err
					cancel()
				})
			}
		})
		if err != nil {
			wg.Done()
			results[i] = DocumentResult{Source: source, Err: err}
			if p.policy == FailFast {
				once.Do(func() {
					firstErr = err
					cancel()
				})
			}
		}
	}
	wg.Wait()

	if firstErr != nil {
		return results, fmt.Errorf("%w: %w", ErrProcessing, firstErr)
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// processOne runs the processor on a single document and logs the outcome.
func (p *Pipeline) processOne(ctx context.Context, source, outputDir string, tracker *ProgressTracker) DocumentResult {
	req := extract.NewRequest(source, outputDir, p.chunkSize)
	result := DocumentResult{
		Source:        source,
		PassageFile:   req.PassagesPath,
		AnnotatedFile: req.AnnotatedPath,
	}

	count, err := p.processor.Process(ctx, req)
	if err != nil {
		result.Err = err
		if errors.Is(err, context.Canceled) {
			result.Skipped = true
		} else {
			p.logger.Error("failed to process document", "source", source, "err", err)
		}
	} else {
		result.Passages = count
		p.logger.Info(fmt.Sprintf("processed %d passages from %s", count, source),
			"source", source, "passages", count)
	}

	if tracker != nil {
		tracker.Done(result.Err != nil && !result.Skipped)
	}
	return result
}
