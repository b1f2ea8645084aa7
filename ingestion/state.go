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

// State is a stage of a pipeline run.
type State int

const (
	StateStart State = iota
	StateManifestRead
	StateProcessing
	StateAggregating
	StateIndexing
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateManifestRead:
		return "manifest-read"
	case StateProcessing:
		return "processing"
	case StateAggregating:
		return "aggregating"
	case StateIndexing:
		return "indexing"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Reason explains why a run was aborted without an error.
type Reason string

const (
	ReasonNone                  Reason = ""
	ReasonNoSources             Reason = "no sources found"
	ReasonNoSuccessfulDocuments Reason = "no documents processed successfully"
)

// FailurePolicy decides what happens when a document fails to process.
type FailurePolicy int

const (
	// FailFast stops the run at the first failed document.
	FailFast FailurePolicy = iota
	// ContinueOnError records failures and carries on with the remaining documents.
	ContinueOnError
)

// SourceOrdering decides which passage files are aggregated, and in what order.
type SourceOrdering int

const (
	// OrderManifest aggregates exactly the passage files this run produced, in manifest order.
	OrderManifest SourceOrdering = iota
	// OrderDirectory aggregates every passage file in the output directory, sorted by name.
	OrderDirectory
)
