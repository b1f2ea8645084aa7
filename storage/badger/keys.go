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

package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/docindex/core"
)

// Key prefixes for different data types
const (
	passagePrefix    = "psg"
	passageDocPrefix = "psgdoc"
	metaKey          = "meta:index"
)

// makePassageKey generates a key for a passage by ID.
func makePassageKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", passagePrefix, id))
}

// makePassageDocKey generates a composite key for the document index.
// Format: prefix:docID:ordinal
func makePassageDocKey(docID core.ID, ordinal int) []byte {
	prefixBytes := []byte(passageDocPrefix + ":")
	buf := make([]byte, len(prefixBytes)+16)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(docID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(ordinal))
	return buf
}

// makePartialPassageDocKey generates a partial key for document queries.
// Format: prefix:docID
func makePartialPassageDocKey(docID core.ID) []byte {
	prefixBytes := []byte(passageDocPrefix + ":")
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(docID))
	return buf
}
