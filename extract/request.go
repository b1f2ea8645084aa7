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

package extract

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/poiesic/docindex/core"
)

// DefaultChunkSize is the maximum passage length, in characters, used when
// no other size is configured.
const DefaultChunkSize = 1000

// Request describes one document to process and where its artifacts go.
type Request struct {
	Source        string // document path
	ChunkSize     int    // maximum passage size in characters
	PassagesPath  string // <output>/<base>_passages.jsonl
	AnnotatedPath string // <output>/<base>_annotated<ext>
}

// Processor extracts passages from a single document.
// Process returns the number of passages written to req.PassagesPath.
type Processor interface {
	Process(ctx context.Context, req Request) (int, error)
}

// NewRequest derives the artifact paths for source inside outputDir.
func NewRequest(source, outputDir string, chunkSize int) Request {
	base := core.BaseName(source)
	return Request{
		Source:        source,
		ChunkSize:     chunkSize,
		PassagesPath:  filepath.Join(outputDir, core.PassageFileName(base)),
		AnnotatedPath: filepath.Join(outputDir, core.AnnotatedFileName(base, filepath.Ext(source))),
	}
}

// Validate checks that every field required for processing is set.
func (r Request) Validate() error {
	if r.Source == "" {
		return fmt.Errorf("%w: source is empty", ErrInvalidRequest)
	}
	if r.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive (got %d)", ErrInvalidRequest, r.ChunkSize)
	}
	if r.PassagesPath == "" {
		return fmt.Errorf("%w: passages path is empty", ErrInvalidRequest)
	}
	if r.AnnotatedPath == "" {
		return fmt.Errorf("%w: annotated path is empty", ErrInvalidRequest)
	}
	return nil
}
