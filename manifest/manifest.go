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

package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/docindex/core"
)

// Read returns the document paths listed in the manifest at path.
// An empty or whitespace-only manifest yields an empty slice and no error.
func Read(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	return strings.Fields(string(data)), nil
}

// Dedupe removes repeated paths, keeping the first occurrence.
// Paths are compared after filepath.Clean. The removed entries are returned
// in the order they were encountered.
func Dedupe(paths []string) (unique []string, dups []string) {
	seen := make(map[string]struct{}, len(paths))
	unique = make([]string, 0, len(paths))
	for _, p := range paths {
		key := filepath.Clean(p)
		if _, ok := seen[key]; ok {
			dups = append(dups, p)
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, p)
	}
	return unique, dups
}

// CheckBaseNames returns ErrBaseNameCollision if two distinct paths map to
// the same base name. Call it on a deduplicated list.
func CheckBaseNames(paths []string) error {
	owners := make(map[string]string, len(paths))
	for _, p := range paths {
		base := core.BaseName(p)
		if prev, ok := owners[base]; ok && filepath.Clean(prev) != filepath.Clean(p) {
			return fmt.Errorf("%w: %q and %q both produce %q", ErrBaseNameCollision, prev, p, core.PassageFileName(base))
		}
		owners[base] = p
	}
	return nil
}
