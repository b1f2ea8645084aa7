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

package storage

import (
	"testing"
	"time"

	"github.com/poiesic/docindex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalPassage(t *testing.T) {
	tests := []struct {
		name    string
		passage *core.Passage
	}{
		{
			name: "passage without vector",
			passage: &core.Passage{
				ID:      core.PassageID("a.pdf", 0, "Hello"),
				DocID:   core.DocumentID("a.pdf"),
				Source:  "a.pdf",
				Page:    1,
				Ordinal: 0,
				Text:    "Hello",
			},
		},
		{
			name: "passage with vector",
			passage: &core.Passage{
				ID:      core.PassageID("docs/b.pdf", 7, "World"),
				DocID:   core.DocumentID("docs/b.pdf"),
				Source:  "docs/b.pdf",
				Page:    12,
				Ordinal: 7,
				Text:    "World\nwith a second line",
				Vector:  []float32{0.25, -0.5, 1.0},
			},
		},
		{
			name: "unicode text",
			passage: &core.Passage{
				ID:      core.PassageID("c.pdf", 3, "Grüße, 世界"),
				DocID:   core.DocumentID("c.pdf"),
				Source:  "c.pdf",
				Page:    2,
				Ordinal: 3,
				Text:    "Grüße, 世界",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalPassage(tt.passage)
			decoded, err := UnmarshalPassage(data)
			require.NoError(t, err)
			assert.Equal(t, tt.passage, decoded)
		})
	}
}

func TestUnmarshalPassage_Truncated(t *testing.T) {
	p := &core.Passage{
		ID:     1,
		DocID:  2,
		Source: "a.pdf",
		Page:   1,
		Text:   "some text that will be cut",
	}
	data := MarshalPassage(p)

	_, err := UnmarshalPassage(data[:len(data)/2])
	assert.Error(t, err)
}

func TestMarshalUnmarshalIndexMeta(t *testing.T) {
	meta := &core.IndexMeta{
		Name:      "manuals",
		Corpus:    "/out/passages.jsonl",
		Passages:  42,
		Documents: 3,
		Embedded:  true,
		BuiltAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	data := MarshalIndexMeta(meta)
	decoded, err := UnmarshalIndexMeta(data)
	require.NoError(t, err)
	assert.Equal(t, meta.Name, decoded.Name)
	assert.Equal(t, meta.Corpus, decoded.Corpus)
	assert.Equal(t, meta.Passages, decoded.Passages)
	assert.Equal(t, meta.Documents, decoded.Documents)
	assert.Equal(t, meta.Embedded, decoded.Embedded)
	assert.True(t, meta.BuiltAt.Equal(decoded.BuiltAt))
}

func TestUnmarshalIndexMeta_Invalid(t *testing.T) {
	_, err := UnmarshalIndexMeta([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
