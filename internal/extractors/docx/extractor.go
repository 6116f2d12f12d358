// Package docx extracts paragraph text from Word (OOXML) documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
	"github.com/custodia-labs/sercha-docsearch/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

const documentPart = "word/document.xml"

// Extractor handles DOCX documents.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".docx"}
}

// Extract returns the raw text of every paragraph in the document body,
// one paragraph per line. Text is not trimmed.
func (e *Extractor) Extract(_ context.Context, content []byte, filename string) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: %s is not a zip archive: %w", domain.ErrInvalidInput, filename, err)
	}

	part, err := openPart(reader, documentPart)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, filename, err)
	}
	defer part.Close()

	text, err := paragraphText(part)
	if err != nil {
		return "", fmt.Errorf("%w: parsing %s: %w", domain.ErrInvalidInput, filename, err)
	}
	return text, nil
}

func openPart(reader *zip.Reader, name string) (io.ReadCloser, error) {
	for _, file := range reader.File {
		if file.Name == name {
			return file.Open()
		}
	}
	return nil, fmt.Errorf("missing %s", name)
}

// paragraphText walks document.xml and concatenates w:t runs.
// Each w:p starts a new line; w:tab and w:br map to tab and newline.
func paragraphText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		out        strings.Builder
		paragraphs int
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				if paragraphs > 0 {
					out.WriteByte('\n')
				}
				paragraphs++
			case "t":
				inText = true
			case "tab":
				out.WriteByte('\t')
			case "br", "cr":
				out.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				out.Write(t)
			}
		}
	}

	return out.String(), nil
}
