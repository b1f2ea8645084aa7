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

// Package ingestion drives a complete build from a manifest to an index.
//
// A Pipeline moves through these states:
//
//	Start -> ManifestRead -> Processing -> Aggregating -> Indexing -> Done
//
// and ends in Aborted when the manifest lists no documents or when no
// document was processed successfully. Aborted runs return a nil error and
// a Result whose Reason explains why nothing was built.
//
// # Collaborators
//
// The pipeline is built from three interfaces so that each stage can be
// replaced in tests:
//
//   - extract.Processor turns one document into a passage file
//   - Aggregator merges passage files into the corpus file
//   - index.Builder commits the corpus to a named index
//
// # Usage
//
//	p, err := ingestion.NewPipeline(processor, aggregate.New(), builder,
//	    ingestion.WithWorkers(4),
//	    ingestion.WithFailurePolicy(ingestion.ContinueOnError),
//	)
//	if err != nil {
//	    return err
//	}
//	defer p.Release()
//
//	res, err := p.Run(ctx, "sources.txt", "out", "manuals")
//
// # Failure Handling
//
// With the default FailFast policy the first failed document stops the run
// and Run returns an error wrapping ErrProcessing. ContinueOnError records the
// failure in the Result and goes on with the remaining documents.
//
// # Ordering
//
// The corpus is assembled from exactly the passage files this run produced,
// in manifest order, even when documents are processed concurrently.
// WithSourceOrdering(OrderDirectory) instead aggregates every passage file
// found in the output directory, sorted by name.
//
// # Thread Safety
//
// A Pipeline may be reused for several runs, but runs must not overlap.
package ingestion
