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
	"fmt"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PageSummary records which passages came from one page.
type PageSummary struct {
	Page  int
	First int // first passage ordinal on the page
	Last  int // last passage ordinal on the page
	Count int
}

// Annotation is the extraction result an Annotator records in the copy.
type Annotation struct {
	Source    string
	Passages  int
	ChunkSize int
	Pages     []PageSummary
}

// Annotator writes an annotated copy of src to dst.
type Annotator interface {
	Annotate(ctx context.Context, src, dst string, ann Annotation) error
}

const stampDescription = "font:Helvetica, points:8, pos:bl, off:12 12, scale:1 abs, rot:0, fillc:#808080, op:0.8"

// PDFCPUAnnotator writes annotated copies with pdfcpu. The copy carries
// document properties describing the extraction and a stamp on every page
// that produced passages.
type PDFCPUAnnotator struct {
	conf *model.Configuration
}

var _ Annotator = (*PDFCPUAnnotator)(nil)

// NewPDFCPUAnnotator creates an annotator using relaxed PDF validation.
func NewPDFCPUAnnotator() *PDFCPUAnnotator {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFCPUAnnotator{conf: conf}
}

// Annotate rewrites src into dst, then adds properties and page stamps in place.
func (a *PDFCPUAnnotator) Annotate(ctx context.Context, src, dst string, ann Annotation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := api.OptimizeFile(src, dst, a.conf); err != nil {
		return fmt.Errorf("%w: %w", ErrAnnotation, err)
	}

	props := map[string]string{
		"docindex.source":     ann.Source,
		"docindex.passages":   strconv.Itoa(ann.Passages),
		"docindex.chunk_size": strconv.Itoa(ann.ChunkSize),
	}
	if err := api.AddPropertiesFile(dst, "", props, a.conf); err != nil {
		return fmt.Errorf("%w: %w", ErrAnnotation, err)
	}

	if len(ann.Pages) == 0 {
		return nil
	}
	stamps := make(map[int]*model.Watermark, len(ann.Pages))
	for _, page := range ann.Pages {
		wm, err := api.TextWatermark(stampText(page), stampDescription, true, false, types.POINTS)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrAnnotation, err)
		}
		stamps[page.Page] = wm
	}
	if err := api.AddWatermarksMapFile(dst, "", stamps, a.conf); err != nil {
		return fmt.Errorf("%w: %w", ErrAnnotation, err)
	}
	return nil
}

func stampText(page PageSummary) string {
	if page.Count == 1 {
		return fmt.Sprintf("passage %d", page.First)
	}
	return fmt.Sprintf("passages %d-%d", page.First, page.Last)
}
