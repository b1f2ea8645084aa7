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

package extract

import (
	"bufio"

	"github.com/google/renameio/v2"
	"github.com/poiesic/docindex/core"
)

// writePassageFile replaces path with one JSON record per passage.
// The file only becomes visible once every record has been written and synced.
func writePassageFile(path string, passages []*core.Passage) error {
	pf, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return err
	}
	defer pf.Cleanup()

	w := bufio.NewWriter(pf)
	for _, p := range passages {
		if err := core.ValidatePassage(p); err != nil {
			return err
		}
		line, err := core.MarshalRecord(p)
		if err != nil {
			return err
		}
		if _, err := w.Write(line); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return pf.CloseAtomicallyReplace()
}
