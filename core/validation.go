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
	"fmt"
	"strings"
)

// ValidatePassage validates a Passage according to domain rules.
//
// Validation rules:
//   - Text must not be empty or whitespace only
//   - Source must not be empty
//   - Page must be >= 1
//   - Ordinal must be >= 0
//
// NOT validated:
//   - Vector (empty until the index builder embeds the passage)
//   - ID and DocID (0 is a legal hash value)
func ValidatePassage(p *Passage) error {
	if p == nil {
		return fmt.Errorf("%w: passage is nil", ErrInvalidPassage)
	}

	if strings.TrimSpace(p.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPassage, ErrEmptyContent)
	}

	if p.Source == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPassage, ErrEmptySource)
	}

	if p.Page < 1 {
		return fmt.Errorf("%w: %w (got %d)", ErrInvalidPassage, ErrInvalidPage, p.Page)
	}

	if p.Ordinal < 0 {
		return fmt.Errorf("%w: %w (got %d)", ErrInvalidPassage, ErrInvalidOrdinal, p.Ordinal)
	}

	return nil
}
