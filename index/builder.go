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

package index

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/docindex/ai"
	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/storage"
	"github.com/poiesic/docindex/storage/badger"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBatchSize      = 64
	defaultParallelism    = 4
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 500 * time.Millisecond

	// maxRecordSize bounds a single corpus line.
	maxRecordSize = 16 * 1024 * 1024
)

// Builder produces or replaces a named index from a corpus file.
type Builder interface {
	Build(ctx context.Context, corpusPath, name string) (*Stats, error)
}

// Stats describes a completed build.
type Stats struct {
	Name      string
	Path      string
	Passages  int
	Documents int
	Embedded  bool
	Elapsed   time.Duration
}

// BadgerBuilder builds indexes as BadgerDB databases under a root directory.
type BadgerBuilder struct {
	root           string
	embedder       ai.Embedder
	batchSize      int
	parallelism    int
	maxAttempts    int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

var _ Builder = (*BadgerBuilder)(nil)

// Option configures a BadgerBuilder.
type Option func(*BadgerBuilder) error

// WithEmbedder enables embeddings. Passages are indexed without vectors when
// no embedder is set.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(b *BadgerBuilder) error {
		b.embedder = embedder
		return nil
	}
}

// WithBatchSize sets how many passages are written (and embedded) together.
func WithBatchSize(size int) Option {
	return func(b *BadgerBuilder) error {
		if size <= 0 {
			return ErrInvalidBatchSize
		}
		b.batchSize = size
		return nil
	}
}

// WithParallelism sets how many batches may be embedded concurrently.
func WithParallelism(n int) Option {
	return func(b *BadgerBuilder) error {
		if n < 1 {
			n = 1
		}
		b.parallelism = n
		return nil
	}
}

// WithRetry configures the embedding retry policy.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(b *BadgerBuilder) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		b.maxAttempts = maxAttempts
		b.retryBaseDelay = baseDelay
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *BadgerBuilder) error {
		if logger != nil {
			b.logger = logger
		}
		return nil
	}
}

// NewBadgerBuilder creates a builder that stores indexes under root.
func NewBadgerBuilder(root string, opts ...Option) (*BadgerBuilder, error) {
	if root == "" {
		return nil, ErrRootRequired
	}
	b := &BadgerBuilder{
		root:           root,
		batchSize:      defaultBatchSize,
		parallelism:    defaultParallelism,
		maxAttempts:    defaultMaxAttempts,
		retryBaseDelay: defaultRetryBaseDelay,
		logger:         slog.Default().With("component", "index-builder"),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Path returns the directory that holds the index called name.
func (b *BadgerBuilder) Path(name string) string {
	return filepath.Join(b.root, name)
}

// Build replaces the index called name with the passages in corpusPath.
func (b *BadgerBuilder) Build(ctx context.Context, corpusPath, name string) (*Stats, error) {
	start := time.Now()
	if err := ValidateName(name); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndex, err)
	}

	records, err := scanCorpus(ctx, corpusPath, nil)
	if err != nil {
		return nil, err
	}

	path := b.Path(name)
	repo, err := badger.NewRepository(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: open %s: %w", ErrIndex, ErrStorage, path, err)
	}
	defer repo.Close()

	if err := repo.Reset(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w: reset: %w", ErrIndex, ErrStorage, err)
	}

	documents := make(map[core.ID]struct{})
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.parallelism)

	batch := make([]*core.Passage, 0, b.batchSize)
	flush := func() {
		pending := batch
		batch = make([]*core.Passage, 0, b.batchSize)
		g.Go(func() error {
			return b.writeBatch(gctx, repo, pending)
		})
	}

	_, scanErr := scanCorpus(gctx, corpusPath, func(p *core.Passage) {
		documents[p.DocID] = struct{}{}
		batch = append(batch, p)
		if len(batch) == b.batchSize {
			flush()
		}
	})
	if scanErr == nil && len(batch) > 0 {
		flush()
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if scanErr != nil {
		return nil, scanErr
	}

	meta := &core.IndexMeta{
		Name:      name,
		Corpus:    corpusPath,
		Passages:  records,
		Documents: len(documents),
		Embedded:  b.embedder != nil,
		BuiltAt:   time.Now().UTC(),
	}
	if err := repo.SaveMeta(ctx, meta); err != nil {
		return nil, fmt.Errorf("%w: %w: save metadata: %w", ErrIndex, ErrStorage, err)
	}

	stats := &Stats{
		Name:      name,
		Path:      path,
		Passages:  records,
		Documents: len(documents),
		Embedded:  meta.Embedded,
		Elapsed:   time.Since(start),
	}
	b.logger.Debug("index built",
		"name", name,
		"path", path,
		"passages", stats.Passages,
		"documents", stats.Documents,
		"embedded", stats.Embedded,
		"elapsed", stats.Elapsed)
	return stats, nil
}

// writeBatch embeds passages when an embedder is configured and stores them.
func (b *BadgerBuilder) writeBatch(ctx context.Context, repo storage.PassageRepository, passages []*core.Passage) error {
	if b.embedder != nil {
		if err := b.embedBatch(ctx, passages); err != nil {
			return err
		}
	}
	if err := repo.PutPassages(ctx, passages...); err != nil {
		return fmt.Errorf("%w: %w: %w", ErrIndex, ErrStorage, err)
	}
	return nil
}

func (b *BadgerBuilder) embedBatch(ctx context.Context, passages []*core.Passage) error {
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		vectors, err = b.embedder.EmbedTexts(ctx, texts)
		return err
	}, b.maxAttempts, b.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("%w: %w: after %d attempts: %w", ErrIndex, ErrEmbedding, b.maxAttempts, err)
	}
	if len(vectors) != len(passages) {
		return fmt.Errorf("%w: %w: expected %d vectors, got %d", ErrIndex, ErrEmbedding, len(passages), len(vectors))
	}
	for i := range passages {
		passages[i].Vector = NormalizeVector(vectors[i])
	}
	return nil
}

// scanCorpus decodes every non-blank line of the corpus and calls fn with each
// passage. It returns the number of passages read. A nil fn only validates.
func scanCorpus(ctx context.Context, corpusPath string, fn func(*core.Passage)) (int, error) {
	f, err := os.Open(corpusPath)
	if err != nil {
		return 0, fmt.Errorf("%w: open corpus: %w", ErrIndex, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)

	count, lineNo := 0, 0
	for scanner.Scan() {
		lineNo++
		if lineNo%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return count, err
			}
		}
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		p, err := core.UnmarshalRecord(line)
		if err != nil {
			return count, fmt.Errorf("%w: %w: %s line %d: %w", ErrIndex, ErrMalformedCorpus, corpusPath, lineNo, err)
		}
		count++
		if fn != nil {
			fn(p)
		}
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("%w: %w: %s: %w", ErrIndex, ErrMalformedCorpus, corpusPath, err)
	}
	return count, ctx.Err()
}

// ValidateName checks that name can be used as a single directory name.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}
	return nil
}

// Open returns a handle on the existing index called name under root.
// The caller must close the returned repository.
func Open(root, name string) (storage.PassageRepository, error) {
	if err := ValidateName(name); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndex, err)
	}
	path := filepath.Join(root, name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: index %q not found under %s: %w", ErrIndex, name, root, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrIndex, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrIndex, path)
	}
	repo, err := badger.NewRepository(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrIndex, ErrStorage, err)
	}
	return repo, nil
}
