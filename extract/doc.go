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

// Package extract turns one document into a passage file and an annotated copy.
//
// The Processor interface is what the ingestion pipeline depends on. The
// concrete PDFProcessor loads page text with langchaingo's PDF loader, splits
// every page into passages no longer than the requested chunk size, writes the
// passages as JSON lines to <base>_passages.jsonl and hands the source to an
// Annotator that produces <base>_annotated.pdf.
//
// # Usage
//
//	proc, err := extract.NewPDFProcessor(extract.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	req := extract.NewRequest("docs/a.pdf", "out", 1000)
//	count, err := proc.Process(ctx, req)
//
// Both output files are fully overwritten on every call. The passage file is
// replaced atomically, so readers never observe a partially written file.
package extract
