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

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// File naming conventions shared by the processor, the aggregator and the driver.
const (
	// PassageFileSuffix terminates every per-document passage file name.
	PassageFileSuffix = "_passages.jsonl"

	// AnnotatedFileInfix sits between the document base name and its extension.
	AnnotatedFileInfix = "_annotated"

	// CorpusFileName is the aggregated corpus written into the output directory.
	CorpusFileName = "passages.jsonl"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DocumentID derives the ID shared by every passage extracted from source.
func DocumentID(source string) ID {
	return IDFromContent(filepath.Clean(source))
}

// PassageID derives the ID of the passage at ordinal within source.
func PassageID(source string, ordinal int, text string) ID {
	return IDFromContent(filepath.Clean(source) + "\x00" + strconv.Itoa(ordinal) + "\x00" + text)
}

// Passage is one retrievable unit of text extracted from a source document.
// Serialized, it occupies exactly one line of a passage file.
type Passage struct {
	ID      ID        `json:"id"`
	DocID   ID        `json:"doc_id"`
	Source  string    `json:"source"`
	Page    int       `json:"page"`    // 1-based page the text came from
	Ordinal int       `json:"ordinal"` // 0-based position within the document
	Text    string    `json:"text"`
	Vector  []float32 `json:"-"` // populated by the index builder when embeddings are enabled
}

// IndexMeta describes the last successful build of a named index.
type IndexMeta struct {
	Name      string
	Corpus    string
	Passages  int
	Documents int
	Embedded  bool
	BuiltAt   time.Time
}

// BaseName returns the file name of path without directory and extension.
// "docs/a.pdf" yields "a".
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// PassageFileName returns the per-document passage file name for a base name.
func PassageFileName(base string) string {
	return base + PassageFileSuffix
}

// AnnotatedFileName returns the annotated copy name for a base name and extension.
// ext includes the leading dot; an empty ext defaults to ".pdf".
func AnnotatedFileName(base, ext string) string {
	if ext == "" {
		ext = ".pdf"
	}
	return base + AnnotatedFileInfix + ext
}

// IsPassageFile reports whether name follows the per-document passage file convention.
// The corpus file itself never matches.
func IsPassageFile(name string) bool {
	name = filepath.Base(name)
	return name != CorpusFileName &&
		strings.HasSuffix(name, PassageFileSuffix) &&
		len(name) > len(PassageFileSuffix)
}
