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

// Package aggregate merges per-document passage files into the corpus file.
//
// The corpus is <output>/passages.jsonl. Its lines are the concatenation of
// the given passage files' lines, in the order the files are given. Each call
// replaces the corpus atomically, so a reader sees either the previous corpus
// or the complete new one.
//
//	agg := aggregate.New()
//	corpus, err := agg.Aggregate(ctx, "out", []string{"out/a_passages.jsonl", "out/b_passages.jsonl"})
//
// Collect reproduces directory enumeration for callers that do not track the
// files they produced.
package aggregate
