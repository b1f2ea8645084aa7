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

package storage

import (
	"context"

	"github.com/poiesic/docindex/core"
)

// PassageRepository persists the passages of one named index.
// Implementations must be thread-safe and support concurrent access.
type PassageRepository interface {
	// Reset removes every passage, secondary index entry and the index metadata.
	// A build calls Reset first so that rebuilding fully overwrites previous content.
	Reset(ctx context.Context) error

	// PutPassages stores passages and their document index entries.
	// Existing passages with the same ID are overwritten.
	PutPassages(ctx context.Context, passages ...*core.Passage) error

	// GetPassage retrieves a single passage by ID.
	// Returns ErrNotFound if the passage doesn't exist.
	GetPassage(ctx context.Context, id core.ID) (*core.Passage, error)

	// PassagesForDocument retrieves the passages of one document ordered by ordinal.
	// Returns an empty slice for unknown documents.
	PassagesForDocument(ctx context.Context, docID core.ID) ([]*core.Passage, error)

	// Count returns the number of stored passages.
	Count(ctx context.Context) (int, error)

	// SaveMeta records the metadata of the latest build.
	SaveMeta(ctx context.Context, meta *core.IndexMeta) error

	// Meta returns the metadata of the latest build.
	// Returns ErrNotFound if the index has never been built.
	Meta(ctx context.Context) (*core.IndexMeta, error)

	// Close releases resources held by the repository.
	Close() error
}
