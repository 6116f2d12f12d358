// Package pdf extracts the text layer of PDF documents using pdfcpu.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
	"github.com/custodia-labs/sercha-docsearch/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles PDF documents.
type Extractor struct {
	conf *model.Configuration
}

// New creates a new PDF extractor.
func New() *Extractor {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Extractor{conf: conf}
}

// Extensions returns the extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// Extract returns the text of every page in document order, pages
// separated by a newline. Pages without a text layer contribute nothing.
func (e *Extractor) Extract(ctx context.Context, content []byte, filename string) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("%w: empty pdf %s", domain.ErrInvalidInput, filename)
	}

	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(content), e.conf)
	if err != nil {
		return "", fmt.Errorf("%w: reading pdf %s: %w", domain.ErrInvalidInput, filename, err)
	}

	pages := make([]string, 0, pdfCtx.PageCount)
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := pageText(pdfCtx, pageNr)
		if err != nil {
			return "", fmt.Errorf("page %d of %s: %w", pageNr, filename, err)
		}
		pages = append(pages, text)
	}

	return strings.Join(pages, "\n"), nil
}

// pageText decodes the content stream of one page.
func pageText(pdfCtx *model.Context, pageNr int) (string, error) {
	r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
	if err != nil {
		return "", err
	}
	if r == nil {
		return "", nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return textFromContentStream(data), nil
}
