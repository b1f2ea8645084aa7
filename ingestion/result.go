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

import (
	"time"

	"github.com/poiesic/docindex/index"
)

// DocumentResult is the outcome of processing one document.
type DocumentResult struct {
	Source        string
	PassageFile   string
	AnnotatedFile string
	Passages      int
	Err           error
	Skipped       bool // not attempted because the run stopped early
}

// OK reports whether the document produced a passage file.
func (d DocumentResult) OK() bool {
	return d.Err == nil && !d.Skipped
}

// Result describes a pipeline run. It is returned even when Run fails, with
// State set to the stage that was reached.
type Result struct {
	State       State
	Reason      Reason
	Documents   []DocumentResult
	CorpusPath  string
	CorpusLines int
	Index       *index.Stats
	Elapsed     time.Duration
}

// Succeeded returns the documents that produced a passage file, in manifest order.
func (r *Result) Succeeded() []DocumentResult {
	var out []DocumentResult
	for _, d := range r.Documents {
		if d.OK() {
			out = append(out, d)
		}
	}
	return out
}

// Failures returns the documents that failed to process.
func (r *Result) Failures() []DocumentResult {
	var out []DocumentResult
	for _, d := range r.Documents {
		if d.Err != nil && !d.Skipped {
			out = append(out, d)
		}
	}
	return out
}

// Passages returns the total number of passages extracted.
func (r *Result) Passages() int {
	total := 0
	for _, d := range r.Documents {
		if d.OK() {
			total += d.Passages
		}
	}
	return total
}
