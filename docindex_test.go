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

package docindex

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/docindex/ai"
	"github.com/poiesic/docindex/ai/mock"
	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/extract"
	"github.com/poiesic/docindex/index"
	"github.com/poiesic/docindex/ingestion"
	"github.com/poiesic/docindex/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIngestor(t *testing.T) {
	_, err := NewIngestor("")
	assert.ErrorIs(t, err, index.ErrRootRequired)

	ing, err := NewIngestor(t.TempDir())
	require.NoError(t, err)
	assert.NotNil(t, ing)
}

func TestNewIngestor_InvalidAIConfig(t *testing.T) {
	_, err := NewIngestor(t.TempDir(), WithAIConfig(ai.NewConfig(ai.WithEmbeddingModel(""))))
	assert.Error(t, err)
}

func TestIngestor_EmptyManifest(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "sources.txt")
	require.NoError(t, os.WriteFile(manifestPath, []byte("\n\n"), 0o644))

	ing, err := NewIngestor(filepath.Join(dir, "indexes"))
	require.NoError(t, err)

	res, err := ing.Build(context.Background(), manifestPath, filepath.Join(dir, "out"), "idx")
	require.NoError(t, err)
	assert.Equal(t, ingestion.StateAborted, res.State)
	assert.Equal(t, ingestion.ReasonNoSources, res.Reason)
	assert.NoDirExists(t, filepath.Join(dir, "out"))
	assert.NoDirExists(t, ing.IndexPath("idx"))
}

func TestIngestor_BuildFromPDFs(t *testing.T) {
	dir := t.TempDir()
	docs := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(docs, 0o755))
	guide := filepath.Join(docs, "guide.pdf")
	notes := filepath.Join(docs, "notes.pdf")
	require.NoError(t, extract.WriteTestPDF(guide, "installation steps", "upgrade steps"))
	require.NoError(t, extract.WriteTestPDF(notes, "release notes"))

	manifestPath := filepath.Join(dir, "sources.txt")
	require.NoError(t, os.WriteFile(manifestPath, []byte(guide+"\n"+notes+"\n"), 0o644))

	ing, err := NewIngestor(filepath.Join(dir, "indexes"), WithEmbedder(mock.NewMockEmbedder()))
	require.NoError(t, err)

	outDir := filepath.Join(dir, "out")
	res, err := ing.Build(context.Background(), manifestPath, outDir, "manuals")
	require.NoError(t, err)
	assert.Equal(t, ingestion.StateDone, res.State)
	require.Len(t, res.Succeeded(), 2)
	assert.Equal(t, 2, res.Documents[0].Passages)
	assert.Equal(t, 1, res.Documents[1].Passages)
	assert.Equal(t, 3, res.CorpusLines)
	assert.FileExists(t, filepath.Join(outDir, "guide_passages.jsonl"))
	assert.FileExists(t, filepath.Join(outDir, "guide_annotated.pdf"))
	assert.FileExists(t, filepath.Join(outDir, "notes_annotated.pdf"))

	require.NotNil(t, res.Index)
	assert.Equal(t, 3, res.Index.Passages)
	assert.Equal(t, 2, res.Index.Documents)
	assert.True(t, res.Index.Embedded)

	info, err := ing.Inspect(context.Background(), "manuals")
	require.NoError(t, err)
	assert.Equal(t, 3, info.Passages)
	assert.Equal(t, filepath.Join(outDir, core.CorpusFileName), info.Meta.Corpus)
}

func TestIngestor_UnreadablePDF(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("not a pdf"), 0o644))
	manifestPath := filepath.Join(dir, "sources.txt")
	require.NoError(t, os.WriteFile(manifestPath, []byte(pdf+"\n"), 0o644))

	ing, err := NewIngestor(filepath.Join(dir, "indexes"), WithEmbedder(mock.NewMockEmbedder()))
	require.NoError(t, err)

	_, err = ing.Build(context.Background(), manifestPath, filepath.Join(dir, "out"), "idx")
	require.ErrorIs(t, err, ingestion.ErrProcessing)

	res, err := ing.Build(context.Background(), manifestPath, filepath.Join(dir, "out"), "idx",
		ingestion.WithFailurePolicy(ingestion.ContinueOnError))
	require.NoError(t, err)
	assert.Equal(t, ingestion.ReasonNoSuccessfulDocuments, res.Reason)
}

func TestIngestor_Inspect(t *testing.T) {
	dir := t.TempDir()
	ing, err := NewIngestor(filepath.Join(dir, "indexes"))
	require.NoError(t, err)

	_, err = ing.Inspect(context.Background(), "missing")
	require.ErrorIs(t, err, index.ErrIndex)

	line, err := core.MarshalRecord(&core.Passage{
		ID:     core.PassageID("a.pdf", 0, "hello"),
		DocID:  core.DocumentID("a.pdf"),
		Source: "a.pdf",
		Page:   1,
		Text:   "hello",
	})
	require.NoError(t, err)
	corpus := filepath.Join(dir, core.CorpusFileName)
	require.NoError(t, os.WriteFile(corpus, append(line, '\n'), 0o644))

	_, err = ing.builder.Build(context.Background(), corpus, "idx")
	require.NoError(t, err)

	info, err := ing.Inspect(context.Background(), "idx")
	require.NoError(t, err)
	assert.Equal(t, 1, info.Passages)
	assert.Equal(t, "idx", info.Meta.Name)
	assert.Equal(t, 1, info.Meta.Documents)
}

func TestIngestor_InspectWithoutMeta(t *testing.T) {
	dir := t.TempDir()
	ing, err := NewIngestor(dir)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bare"), 0o755))

	_, err = ing.Inspect(context.Background(), "bare")
	require.ErrorIs(t, err, index.ErrIndex)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
