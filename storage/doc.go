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

// Package storage provides the storage abstraction layer for docindex.
//
// This package defines the repository interface that decouples index storage
// from the index builder. The BadgerDB implementation lives in the badger
// subpackage.
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces:
//
//	repo, err := badger.NewRepository(path)  // returns storage.PassageRepository
//
// Internal constructors may return concrete types since they're only used
// within the implementation package.
//
// # Records
//
// A named index stores three kinds of record:
//
//   - Passage records keyed by passage ID
//   - Document index entries mapping (document ID, ordinal) to a passage ID
//   - A single IndexMeta record describing the latest build
//
// Records are serialized with the MUS codecs from the core package.
//
// # Usage
//
//	repo, err := badger.NewRepository("/path/to/indexes/manuals")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
// Use in tests with in-memory storage:
//
//	repo, err := badger.NewMemoryRepository()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
