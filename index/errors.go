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

import "errors"

var (
	// ErrIndex indicates that the index could not be built.
	ErrIndex = errors.New("index build failed")

	// ErrMalformedCorpus indicates a corpus line that is not a valid passage record.
	ErrMalformedCorpus = errors.New("malformed corpus")

	// ErrStorage indicates a failure in the index storage.
	ErrStorage = errors.New("index storage failure")

	// ErrEmbedding indicates that passages could not be embedded.
	ErrEmbedding = errors.New("embedding failed")

	// ErrInvalidName indicates an index name that cannot be used as a directory name.
	ErrInvalidName = errors.New("invalid index name")

	// ErrRootRequired indicates that no index root directory was given.
	ErrRootRequired = errors.New("index root is required")

	// ErrInvalidMaxAttempts indicates maxAttempts must be greater than 0.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrInvalidBatchSize indicates batch size must be greater than 0.
	ErrInvalidBatchSize = errors.New("batch size must be greater than 0")
)
