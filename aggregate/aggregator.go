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

package aggregate

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/renameio/v2"
	"github.com/poiesic/docindex/core"
)

// Stats describes one aggregation.
type Stats struct {
	Files int   // passage files that contributed at least one byte
	Bytes int64 // corpus size
	Lines int   // corpus records
}

// Aggregator concatenates passage files into the corpus file.
type Aggregator struct {
	logger *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an Aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		logger: slog.Default().With("component", "aggregator"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate writes outputDir/passages.jsonl from files and returns its path.
func (a *Aggregator) Aggregate(ctx context.Context, outputDir string, files []string) (string, error) {
	path, _, err := a.AggregateWithStats(ctx, outputDir, files)
	return path, err
}

// AggregateWithStats is Aggregate that also reports what was written.
// Missing and empty files contribute nothing. A file whose last record lacks
// a trailing newline gets one so records stay one per line.
func (a *Aggregator) AggregateWithStats(ctx context.Context, outputDir string, files []string) (string, *Stats, error) {
	corpusPath := filepath.Join(outputDir, core.CorpusFileName)

	pf, err := renameio.NewPendingFile(corpusPath, renameio.WithPermissions(0o644))
	if err != nil {
		return "", nil, fmt.Errorf("%w: create %s: %w", ErrAggregation, corpusPath, err)
	}
	defer pf.Cleanup()

	stats := &Stats{}
	w := bufio.NewWriter(pf)
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
		if filepath.Clean(file) == filepath.Clean(corpusPath) {
			continue
		}
		n, lines, err := appendFile(w, file)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %s: %w", ErrAggregation, file, err)
		}
		if n > 0 {
			stats.Files++
			stats.Bytes += n
			stats.Lines += lines
		}
	}
	if err := w.Flush(); err != nil {
		return "", nil, fmt.Errorf("%w: write %s: %w", ErrAggregation, corpusPath, err)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return "", nil, fmt.Errorf("%w: replace %s: %w", ErrAggregation, corpusPath, err)
	}

	a.logger.Debug("corpus written",
		"path", corpusPath,
		"files", stats.Files,
		"lines", stats.Lines,
		"bytes", stats.Bytes)
	return corpusPath, stats, nil
}

// appendFile copies path into w and returns the bytes and records written.
// A missing file is treated as empty.
func appendFile(w *bufio.Writer, path string) (int64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, 0, nil
		}
		return 0, 0, err
	}
	defer f.Close()

	counter := &lineCounter{}
	n, err := io.Copy(io.MultiWriter(w, counter), f)
	if err != nil {
		return 0, 0, err
	}
	if n > 0 && counter.last != '\n' {
		if err := w.WriteByte('\n'); err != nil {
			return 0, 0, err
		}
		n++
		counter.lines++
	}
	return n, counter.lines, nil
}

// lineCounter counts newline-terminated records written through it.
type lineCounter struct {
	lines int
	last  byte
}

func (c *lineCounter) Write(p []byte) (int, error) {
	if len(p) > 0 {
		c.lines += bytes.Count(p, []byte{'\n'})
		c.last = p[len(p)-1]
	}
	return len(p), nil
}

// Collect returns the passage files in outputDir, sorted by name.
// The corpus file is never included.
func Collect(outputDir string) ([]string, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAggregation, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !core.IsPassageFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(outputDir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
