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
	"log/slog"

	"github.com/poiesic/docindex/core"
)

// PDFProcessor implements Processor for PDF documents.
type PDFProcessor struct {
	loader            PageLoader
	annotator         Annotator
	requireAnnotation bool
	logger            *slog.Logger
}

var _ Processor = (*PDFProcessor)(nil)

// Option configures a PDFProcessor.
type Option func(*PDFProcessor) error

// WithPageLoader replaces the langchaingo PDF loader.
func WithPageLoader(loader PageLoader) Option {
	return func(p *PDFProcessor) error {
		if loader == nil {
			return ErrLoaderRequired
		}
		p.loader = loader
		return nil
	}
}

// WithAnnotator replaces the pdfcpu annotator.
func WithAnnotator(annotator Annotator) Option {
	return func(p *PDFProcessor) error {
		if annotator == nil {
			return ErrAnnotatorRequired
		}
		p.annotator = annotator
		return nil
	}
}

// WithAnnotationRequired controls whether an annotation failure fails the document.
// When false, the failure is logged and the passages still count.
func WithAnnotationRequired(required bool) Option {
	return func(p *PDFProcessor) error {
		p.requireAnnotation = required
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *PDFProcessor) error {
		if logger != nil {
			p.logger = logger
		}
		return nil
	}
}

// NewPDFProcessor creates a PDF processor. By default it loads text with
// langchaingo, annotates with pdfcpu and treats annotation failures as fatal.
func NewPDFProcessor(opts ...Option) (*PDFProcessor, error) {
	p := &PDFProcessor{
		loader:            PDFLoader{},
		annotator:         NewPDFCPUAnnotator(),
		requireAnnotation: true,
		logger:            slog.Default().With("component", "pdf-processor"),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Process extracts the passages of req.Source, writes them to req.PassagesPath
// and writes the annotated copy to req.AnnotatedPath.
func (p *PDFProcessor) Process(ctx context.Context, req Request) (int, error) {
	if err := req.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrProcessing, req.Source, err)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	pages, err := p.loader.LoadPages(ctx, req.Source)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: load: %w", ErrProcessing, req.Source, err)
	}

	passages, err := splitPages(req.Source, pages, req.ChunkSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: split: %w", ErrProcessing, req.Source, err)
	}

	if err := writePassageFile(req.PassagesPath, passages); err != nil {
		return 0, fmt.Errorf("%w: %s: write passages: %w", ErrProcessing, req.Source, err)
	}

	ann := Annotation{
		Source:    req.Source,
		Passages:  len(passages),
		ChunkSize: req.ChunkSize,
		Pages:     summarizePages(passages),
	}
	if err := p.annotator.Annotate(ctx, req.Source, req.AnnotatedPath, ann); err != nil {
		if p.requireAnnotation {
			return 0, fmt.Errorf("%w: %s: %w", ErrProcessing, req.Source, err)
		}
		p.logger.Warn("annotation skipped", "source", req.Source, "err", err)
	}

	p.logger.Debug("document processed",
		"source", req.Source,
		"pages", len(pages),
		"passages", len(passages))
	return len(passages), nil
}

// summarizePages groups passages by page, in page order of first appearance.
func summarizePages(passages []*core.Passage) []PageSummary {
	var out []PageSummary
	for _, passage := range passages {
		if n := len(out); n > 0 && out[n-1].Page == passage.Page {
			out[n-1].Last = passage.Ordinal
			out[n-1].Count++
			continue
		}
		out = append(out, PageSummary{
			Page:  passage.Page,
			First: passage.Ordinal,
			Last:  passage.Ordinal,
			Count: 1,
		})
	}
	return out
}
