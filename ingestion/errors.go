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

import "errors"

var (
	// ErrManifest is returned when the manifest cannot be read or names
	// documents that cannot be processed together.
	ErrManifest = errors.New("manifest error")

	// ErrProcessing is returned when a document fails under the fail-fast policy.
	ErrProcessing = errors.New("processing error")

	// ErrAggregation is returned when the corpus file cannot be produced.
	ErrAggregation = errors.New("aggregation error")

	// ErrIndex is returned when the index build fails.
	ErrIndex = errors.New("index error")

	// ErrProcessorRequired is returned when a document processor is not provided.
	ErrProcessorRequired = errors.New("document processor required")

	// ErrAggregatorRequired is returned when an aggregator is not provided.
	ErrAggregatorRequired = errors.New("aggregator required")

	// ErrBuilderRequired is returned when an index builder is not provided.
	ErrBuilderRequired = errors.New("index builder required")

	// ErrInvalidChunkSize is returned when the chunk size is not positive.
	ErrInvalidChunkSize = errors.New("chunk size must be greater than 0")
)
