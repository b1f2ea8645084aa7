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

// Package manifest reads the list of documents a build should ingest.
//
// A manifest is a plain text file of document paths separated by any
// whitespace. Order is preserved and empty tokens are dropped:
//
//	paths, err := manifest.Read("sources.txt")
//	if errors.Is(err, manifest.ErrNotFound) {
//	    ...
//	}
//
// Dedupe and CheckBaseNames prepare a path list for processing. Every
// document writes artifacts named after its base name, so two distinct paths
// sharing a base name would overwrite each other's output.
package manifest
