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
	"context"
	"os"

	"github.com/tmc/langchaingo/documentloaders"
)

// Page is the extracted text of one document page. Number is 1-based.
type Page struct {
	Number int
	Text   string
}

// PageLoader returns the text of every page of a document, in page order.
type PageLoader interface {
	LoadPages(ctx context.Context, path string) ([]Page, error)
}

// PDFLoader reads the text layer of PDF files through langchaingo.
type PDFLoader struct{}

var _ PageLoader = PDFLoader{}

// LoadPages opens path and returns one Page per PDF page that has text.
func (PDFLoader) LoadPages(ctx context.Context, path string) ([]Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	docs, err := documentloaders.NewPDF(f, info.Size()).Load(ctx)
	if err != nil {
		return nil, err
	}

	pages := make([]Page, 0, len(docs))
	for i, doc := range docs {
		number := i + 1
		if n, ok := doc.Metadata["page"].(int); ok && n > 0 {
			number = n
		}
		pages = append(pages, Page{Number: number, Text: doc.PageContent})
	}
	return pages, nil
}
