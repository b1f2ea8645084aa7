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
	"strings"

	"github.com/poiesic/docindex/core"
	"github.com/tmc/langchaingo/textsplitter"
)

// splitPages cuts every page into chunks of at most chunkSize characters and
// returns them as passages with document-global ordinals starting at 0.
func splitPages(source string, pages []Page, chunkSize int) ([]*core.Passage, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(0),
	)

	docID := core.DocumentID(source)
	var passages []*core.Passage
	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		chunks, err := splitter.SplitText(page.Text)
		if err != nil {
			return nil, err
		}
		for _, chunk := range chunks {
			text := strings.TrimSpace(chunk)
			if text == "" {
				continue
			}
			ordinal := len(passages)
			passages = append(passages, &core.Passage{
				ID:      core.PassageID(source, ordinal, text),
				DocID:   docID,
				Source:  source,
				Page:    page.Number,
				Ordinal: ordinal,
				Text:    text,
			})
		}
	}
	return passages, nil
}
