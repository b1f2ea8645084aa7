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

// Package index commits a corpus file to a named, persistent passage index.
//
// The Builder interface is what the ingestion pipeline depends on: given the
// path of a corpus file and an index name, produce or replace that index.
// BadgerBuilder stores each index as a BadgerDB database at <root>/<name>.
//
// # Build
//
// A build reads the corpus twice. The first pass decodes and validates every
// record without touching the index, so a malformed corpus leaves the previous
// index intact. The second pass clears the index and writes the passages in
// batches. When an embedder is configured, each batch is embedded before it is
// written, with bounded parallelism and exponential backoff on failures.
//
//	builder, err := index.NewBadgerBuilder("/var/lib/docindex",
//	    index.WithEmbedder(embedder))
//	stats, err := builder.Build(ctx, "out/passages.jsonl", "manuals")
//
// # Inspection
//
// Open returns a read handle on an existing index for verification and the
// stats command. Query serving is out of scope for this package.
package index
