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

package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalRecord renders p as a single JSONL record without the trailing newline.
// JSON string escaping guarantees the text never introduces a raw line break.
func MarshalRecord(p *Passage) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	if bytes.IndexByte(data, '\n') >= 0 {
		return nil, ErrMultiLineRecord
	}
	return data, nil
}

// UnmarshalRecord parses one JSONL record and validates the resulting passage.
func UnmarshalRecord(line []byte) (*Passage, error) {
	var p Passage
	if err := json.Unmarshal(bytes.TrimSpace(line), &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPassage, err)
	}
	if err := ValidatePassage(&p); err != nil {
		return nil, err
	}
	return &p, nil
}
