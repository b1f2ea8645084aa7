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
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/docindex/aggregate"
	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/extract"
	"github.com/poiesic/docindex/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProcessor writes count[base] passage records for each document.
type fakeProcessor struct {
	mu       sync.Mutex
	counts   map[string]int
	failures map[string]error
	delays   map[string]time.Duration
	requests []extract.Request
}

func newFakeProcessor(counts map[string]int) *fakeProcessor {
	return &fakeProcessor{
		counts:   counts,
		failures: map[string]error{},
		delays:   map[string]time.Duration{},
	}
}

func (f *fakeProcessor) Process(ctx context.Context, req extract.Request) (int, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	base := core.BaseName(req.Source)
	delay := f.delays[base]
	failure := f.failures[base]
	count := f.counts[base]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	if failure != nil {
		return 0, fmt.Errorf("%w: %s: %w", extract.ErrProcessing, req.Source, failure)
	}

	var buf bytes.Buffer
	for i := 0; i < count; i++ {
		text := fmt.Sprintf("%s passage %d", base, i)
		line, err := core.MarshalRecord(&core.Passage{
			ID:      core.PassageID(req.Source, i, text),
			DocID:   core.DocumentID(req.Source),
			Source:  req.Source,
			Page:    1,
			Ordinal: i,
			Text:    text,
		})
		if err != nil {
			return 0, err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(req.PassagesPath, buf.Bytes(), 0o644); err != nil {
		return 0, err
	}
	if err := os.WriteFile(req.AnnotatedPath, []byte("%PDF-annotated"), 0o644); err != nil {
		return 0, err
	}
	return count, nil
}

func (f *fakeProcessor) sources() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.requests))
	for i, r := range f.requests {
		out[i] = r.Source
	}
	return out
}

// fakeBuilder records the corpus it was asked to index.
type fakeBuilder struct {
	calls []string
	names []string
	lines int
	err   error
}

func (f *fakeBuilder) Build(ctx context.Context, corpusPath, name string) (*index.Stats, error) {
	f.calls = append(f.calls, corpusPath)
	f.names = append(f.names, name)
	if f.err != nil {
		return nil, f.err
	}
	data, err := os.ReadFile(corpusPath)
	if err != nil {
		return nil, err
	}
	f.lines = bytes.Count(data, []byte{'\n'})
	return &index.Stats{Name: name, Passages: f.lines}, nil
}

type failingAggregator struct{ err error }

func (f failingAggregator) AggregateWithStats(ctx context.Context, outputDir string, files []string) (string, *aggregate.Stats, error) {
	return "", nil, f.err
}

type fixture struct {
	dir       string
	outputDir string
	processor *fakeProcessor
	builder   *fakeBuilder
}

func newFixture(t *testing.T, counts map[string]int) *fixture {
	t.Helper()
	dir := t.TempDir()
	return &fixture{
		dir:       dir,
		outputDir: filepath.Join(dir, "out"),
		processor: newFakeProcessor(counts),
		builder:   &fakeBuilder{},
	}
}

func (f *fixture) manifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, "sources.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (f *fixture) pipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()
	p, err := NewPipeline(f.processor, aggregate.New(), f.builder, opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		n++
	}
	require.NoError(t, scanner.Err())
	return n
}

func TestRun_TwoDocuments(t *testing.T) {
	fx := newFixture(t, map[string]int{"a": 3, "b": 5})
	p := fx.pipeline(t)

	res, err := p.Run(context.Background(), fx.manifest(t, "a.pdf\nb.pdf\n"), fx.outputDir, "manuals")
	require.NoError(t, err)

	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, ReasonNone, res.Reason)
	assert.Equal(t, 3, countLines(t, filepath.Join(fx.outputDir, "a_passages.jsonl")))
	assert.Equal(t, 5, countLines(t, filepath.Join(fx.outputDir, "b_passages.jsonl")))
	assert.FileExists(t, filepath.Join(fx.outputDir, "a_annotated.pdf"))
	assert.FileExists(t, filepath.Join(fx.outputDir, "b_annotated.pdf"))

	assert.Equal(t, filepath.Join(fx.outputDir, core.CorpusFileName), res.CorpusPath)
	assert.Equal(t, 8, countLines(t, res.CorpusPath))
	assert.Equal(t, 8, res.CorpusLines)
	assert.Equal(t, 8, res.Passages())

	require.Len(t, fx.builder.calls, 1)
	assert.Equal(t, res.CorpusPath, fx.builder.calls[0])
	assert.Equal(t, "manuals", fx.builder.names[0])
	assert.Equal(t, 8, fx.builder.lines)
	require.NotNil(t, res.Index)
	assert.Equal(t, 8, res.Index.Passages)
}

func TestRun_CorpusFollowsManifestOrder(t *testing.T) {
	fx := newFixture(t, map[string]int{"z": 1, "a": 1, "m": 1})
	p := fx.pipeline(t)

	res, err := p.Run(context.Background(), fx.manifest(t, "z.pdf a.pdf m.pdf"), fx.outputDir, "idx")
	require.NoError(t, err)

	data, err := os.ReadFile(res.CorpusPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "z passage 0")
	assert.Contains(t, lines[1], "a passage 0")
	assert.Contains(t, lines[2], "m passage 0")
}

func TestRun_EmptyManifest(t *testing.T) {
	for _, content := range []string{"", "  \n\t \n"} {
		fx := newFixture(t, nil)
		p := fx.pipeline(t)
		manifestPath := fx.manifest(t, content)

		// Running twice leaves no artifacts either time
		for i := 0; i < 2; i++ {
			res, err := p.Run(context.Background(), manifestPath, fx.outputDir, "idx")
			require.NoError(t, err)
			assert.Equal(t, StateAborted, res.State)
			assert.Equal(t, ReasonNoSources, res.Reason)
			assert.Empty(t, fx.processor.sources())
			assert.Empty(t, fx.builder.calls)
			assert.NoDirExists(t, fx.outputDir)
		}
	}
}

func TestRun_MissingManifest(t *testing.T) {
	fx := newFixture(t, nil)
	p := fx.pipeline(t)

	res, err := p.Run(context.Background(), filepath.Join(fx.dir, "missing.txt"), fx.outputDir, "idx")
	require.ErrorIs(t, err, ErrManifest)
	assert.Equal(t, StateStart, res.State)
	assert.NoDirExists(t, fx.outputDir)
	assert.Empty(t, fx.builder.calls)
}

func TestRun_InvalidIndexName(t *testing.T) {
	for _, name := range []string{"", "a/b", ".."} {
		t.Run(name, func(t *testing.T) {
			fx := newFixture(t, map[string]int{"a": 2})
			p := fx.pipeline(t)

			res, err := p.Run(context.Background(), fx.manifest(t, "a.pdf"), fx.outputDir, name)
			require.ErrorIs(t, err, ErrIndex)
			assert.ErrorIs(t, err, index.ErrInvalidName)
			assert.Equal(t, StateStart, res.State)
			assert.Empty(t, fx.processor.sources())
			assert.Empty(t, fx.builder.calls)
			assert.NoDirExists(t, fx.outputDir)
		})
	}
}

func TestRun_RerunOverwrites(t *testing.T) {
	fx := newFixture(t, map[string]int{"a": 3, "b": 5})
	p := fx.pipeline(t)
	manifestPath := fx.manifest(t, "a.pdf b.pdf")

	_, err := p.Run(context.Background(), manifestPath, fx.outputDir, "idx")
	require.NoError(t, err)

	fx.processor.counts["a"] = 1
	fx.processor.counts["b"] = 2
	res, err := p.Run(context.Background(), manifestPath, fx.outputDir, "idx")
	require.NoError(t, err)

	assert.Equal(t, 1, countLines(t, filepath.Join(fx.outputDir, "a_passages.jsonl")))
	assert.Equal(t, 2, countLines(t, filepath.Join(fx.outputDir, "b_passages.jsonl")))
	assert.Equal(t, 3, countLines(t, res.CorpusPath))
	assert.Equal(t, 3, fx.builder.lines)
}

func TestRun_OverwritesUnrelatedFileWithSameName(t *testing.T) {
	fx := newFixture(t, map[string]int{"a": 2})
	require.NoError(t, os.MkdirAll(fx.outputDir, 0o755))
	stale := filepath.Join(fx.outputDir, "a_passages.jsonl")
	require.NoError(t, os.WriteFile(stale, []byte("junk\njunk\njunk\njunk\n"), 0o644))

	res, err := fx.pipeline(t).Run(context.Background(), fx.manifest(t, "a.pdf"), fx.outputDir, "idx")
	require.NoError(t, err)
	assert.Equal(t, 2, countLines(t, stale))
	assert.Equal(t, 2, countLines(t, res.CorpusPath))
}

func TestRun_FailFast(t *testing.T) {
	fx := newFixture(t, map[string]int{"a": 3, "b": 5, "c": 2})
	fx.processor.failures["b"] = errors.New("corrupt")
	p := fx.pipeline(t)

	res, err := p.Run(context.Background(), fx.manifest(t, "a.pdf b.pdf c.pdf"), fx.outputDir, "idx")
	require.ErrorIs(t, err, ErrProcessing)
	assert.ErrorIs(t, err, extract.ErrProcessing)
	assert.Equal(t, StateProcessing, res.State)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, fx.processor.sources())
	assert.Empty(t, fx.builder.calls)
	assert.NoFileExists(t, filepath.Join(fx.outputDir, core.CorpusFileName))
	require.Len(t, res.Failures(), 1)
	assert.Equal(t, "b.pdf", res.Failures()[0].Source)
}

func TestRun_ContinueOnError(t *testing.T) {
	fx := newFixture(t, map[string]int{"a": 3, "b": 5, "c": 2})
	fx.processor.failures["b"] = errors.New("corrupt")
	p := fx.pipeline(t, WithFailurePolicy(ContinueOnError))

	res, err := p.Run(context.Background(), fx.manifest(t, "a.pdf b.pdf c.pdf"), fx.outputDir, "idx")
	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, 5, countLines(t, res.CorpusPath))
	require.Len(t, res.Failures(), 1)
	assert.Equal(t, "b.pdf", res.Failures()[0].Source)
	assert.Len(t, res.Succeeded(), 2)
}

func TestRun_NoSuccessfulDocuments(t *testing.T) {
	fx := newFixture(t, nil)
	fx.processor.failures["a"] = errors.New("corrupt")
	p := fx.pipeline(t, WithFailurePolicy(ContinueOnError))

	res, err := p.Run(context.Background(), fx.manifest(t, "a.pdf"), fx.outputDir, "idx")
	require.NoError(t, err)
	assert.Equal(t, StateAborted, res.State)
	assert.Equal(t, ReasonNoSuccessfulDocuments, res.Reason)
	assert.Empty(t, fx.builder.calls)
}

func TestRun_ZeroPassageDocument(t *testing.T) {
	fx := newFixture(t, map[string]int{"a": 0, "b": 2})

	res, err := fx.pipeline(t).Run(context.Background(), fx.manifest(t, "a.pdf b.pdf"), fx.outputDir, "idx")
	require.NoError(t, err)
	assert.Equal(t, 2, res.CorpusLines)
	assert.Len(t, res.Succeeded(), 2)
}

func TestRun_AggregationError(t *testing.T) {
	fx := newFixture(t, map[string]int{"a": 1})
	aggErr := fmt.Errorf("%w: disk full", aggregate.ErrAggregation)
	p, err := NewPipeline(fx.processor, failingAggregator{err: aggErr}, fx.builder)
	require.NoError(t, err)
	defer p.Release()

	res, err := p.Run(context.Background(), fx.manifest(t, "a.pdf"), fx.outputDir, "idx")
	require.ErrorIs(t, err, ErrAggregation)
	assert.ErrorIs(t, err, aggregate.ErrAggregation)
	assert.Equal(t, StateAggregating, res.State)
	assert.Empty(t, fx.builder.calls)
}

func TestRun_IndexError(t *testing.T) {
	fx := newFixture(t, map[string]int{"a": 1})
	fx.builder.err = fmt.Errorf("%w: locked", index.ErrIndex)

	res, err := fx.pipeline(t).Run(context.Background(), fx.manifest(t, "a.pdf"), fx.outputDir, "idx")
	require.ErrorIs(t, err, ErrIndex)
	assert.ErrorIs(t, err, index.ErrIndex)
	assert.Equal(t, StateIndexing, res.State)
	assert.FileExists(t, res.CorpusPath)
}

func TestRun_DeduplicatesSources(t *testing.T) {
	fx := newFixture(t, map[string]int{"a": 2})

	res, err := fx.pipeline(t).Run(context.Background(), fx.manifest(t, "a.pdf ./a.pdf a.pdf"), fx.outputDir, "idx")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf"}, fx.processor.sources())
	assert.Equal(t, 2, res.CorpusLines)
}

func TestRun_BaseNameCollision(t *testing.T) {
	fx := newFixture(t, map[string]int{"a": 2})

	_, err := fx.pipeline(t).Run(context.Background(), fx.manifest(t, "x/a.pdf y/a.pdf"), fx.outputDir, "idx")
	require.ErrorIs(t, err, ErrManifest)
	assert.Empty(t, fx.processor.sources())
	assert.NoDirExists(t, fx.outputDir)
}

func TestRun_DirectoryOrderingIncludesStaleFiles(t *testing.T) {
	fx := newFixture(t, map[string]int{"b": 1})
	require.NoError(t, os.MkdirAll(fx.outputDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(fx.outputDir, "a_passages.jsonl"), []byte("stale\n"), 0o644))
	manifestPath := fx.manifest(t, "b.pdf")

	res, err := fx.pipeline(t).Run(context.Background(), manifestPath, fx.outputDir, "idx")
	require.NoError(t, err)
	assert.Equal(t, 1, res.CorpusLines)

	res, err = fx.pipeline(t, WithSourceOrdering(OrderDirectory)).Run(context.Background(), manifestPath, fx.outputDir, "idx")
	require.NoError(t, err)
	assert.Equal(t, 2, res.CorpusLines)
}

func TestRun_ChunkSize(t *testing.T) {
	fx := newFixture(t, map[string]int{"a": 1})

	_, err := fx.pipeline(t).Run(context.Background(), fx.manifest(t, "a.pdf"), fx.outputDir, "idx")
	require.NoError(t, err)
	_, err = fx.pipeline(t, WithChunkSize(250)).Run(context.Background(), fx.manifest(t, "a.pdf"), fx.outputDir, "idx")
	require.NoError(t, err)

	require.Len(t, fx.processor.requests, 2)
	assert.Equal(t, extract.DefaultChunkSize, fx.processor.requests[0].ChunkSize)
	assert.Equal(t, 250, fx.processor.requests[1].ChunkSize)
	assert.Equal(t, filepath.Join(fx.outputDir, "a_passages.jsonl"), fx.processor.requests[0].PassagesPath)
	assert.Equal(t, filepath.Join(fx.outputDir, "a_annotated.pdf"), fx.processor.requests[0].AnnotatedPath)
}

func TestRun_WorkersPreserveManifestOrder(t *testing.T) {
	counts := map[string]int{"d0": 1, "d1": 2, "d2": 3, "d3": 1, "d4": 2, "d5": 3}
	fx := newFixture(t, counts)
	// Earlier documents finish last
	for i := 0; i < 6; i++ {
		fx.processor.delays[fmt.Sprintf("d%d", i)] = time.Duration(6-i) * 5 * time.Millisecond
	}
	p := fx.pipeline(t, WithWorkers(4))

	res, err := p.Run(context.Background(), fx.manifest(t, "d0.pdf d1.pdf d2.pdf d3.pdf d4.pdf d5.pdf"), fx.outputDir, "idx")
	require.NoError(t, err)
	assert.Equal(t, 12, res.CorpusLines)

	require.Len(t, res.Documents, 6)
	for i, d := range res.Documents {
		assert.Equal(t, fmt.Sprintf("d%d.pdf", i), d.Source)
	}

	data, err := os.ReadFile(res.CorpusPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Contains(t, lines[0], "d0 passage 0")
	assert.Contains(t, lines[len(lines)-1], "d5 passage 2")
}

func TestRun_WorkersFailFast(t *testing.T) {
	fx := newFixture(t, map[string]int{"a": 1, "b": 1, "c": 1, "d": 1})
	fx.processor.failures["a"] = errors.New("corrupt")
	for _, base := range []string{"b", "c", "d"} {
		fx.processor.delays[base] = 200 * time.Millisecond
	}
	p := fx.pipeline(t, WithWorkers(2))

	res, err := p.Run(context.Background(), fx.manifest(t, "a.pdf b.pdf c.pdf d.pdf"), fx.outputDir, "idx")
	require.ErrorIs(t, err, ErrProcessing)
	assert.Empty(t, fx.builder.calls)
	require.Len(t, res.Failures(), 1)
	assert.Equal(t, "a.pdf", res.Failures()[0].Source)
}

func TestRun_CancelledContext(t *testing.T) {
	fx := newFixture(t, map[string]int{"a": 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fx.pipeline(t).Run(ctx, fx.manifest(t, "a.pdf"), fx.outputDir, "idx")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fx.processor.sources())
	assert.Empty(t, fx.builder.calls)
}

func TestRun_Progress(t *testing.T) {
	fx := newFixture(t, map[string]int{"a": 1, "b": 1})
	var buf bytes.Buffer

	_, err := fx.pipeline(t, WithProgress(&buf)).Run(context.Background(), fx.manifest(t, "a.pdf b.pdf"), fx.outputDir, "idx")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Progress: 2/2 documents")
}

func TestRun_WithBadgerBuilder(t *testing.T) {
	fx := newFixture(t, map[string]int{"a": 3, "b": 5})
	indexRoot := filepath.Join(fx.dir, "indexes")
	builder, err := index.NewBadgerBuilder(indexRoot)
	require.NoError(t, err)

	p, err := NewPipeline(fx.processor, aggregate.New(), builder)
	require.NoError(t, err)
	defer p.Release()

	res, err := p.Run(context.Background(), fx.manifest(t, "a.pdf b.pdf"), fx.outputDir, "manuals")
	require.NoError(t, err)
	require.NotNil(t, res.Index)
	assert.Equal(t, 8, res.Index.Passages)
	assert.Equal(t, 2, res.Index.Documents)

	repo, err := index.Open(indexRoot, "manuals")
	require.NoError(t, err)
	defer repo.Close()
	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, count)
}

func TestNewPipeline_Validation(t *testing.T) {
	proc := newFakeProcessor(nil)
	agg := aggregate.New()
	builder := &fakeBuilder{}

	_, err := NewPipeline(nil, agg, builder)
	assert.ErrorIs(t, err, ErrProcessorRequired)

	_, err = NewPipeline(proc, nil, builder)
	assert.ErrorIs(t, err, ErrAggregatorRequired)

	_, err = NewPipeline(proc, agg, nil)
	assert.ErrorIs(t, err, ErrBuilderRequired)

	_, err = NewPipeline(proc, agg, builder, WithChunkSize(0))
	assert.ErrorIs(t, err, ErrInvalidChunkSize)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "aborted", StateAborted.String())
	assert.Equal(t, "unknown", State(99).String())
}
