package odt

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
	"github.com/custodia-labs/sercha-docsearch/internal/core/ports/driven"
)

func createTestODT(t *testing.T, body string) []byte {
	t.Helper()

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	mt, err := w.Create("mimetype")
	require.NoError(t, err)
	_, _ = mt.Write([]byte("application/vnd.oasis.opendocument.text"))

	content, err := w.Create("content.xml")
	require.NoError(t, err)
	_, _ = content.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0">
<office:body><office:text>` + body + `</office:text></office:body></office:document-content>`))

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtractor_ImplementsInterface(t *testing.T) {
	var _ driven.Extractor = (*Extractor)(nil)
}

func TestExtractor_Extensions(t *testing.T) {
	assert.Equal(t, []string{".odt"}, New().Extensions())
}

func TestExtractor_Extract(t *testing.T) {
	content := createTestODT(t, `<text:p>Quarterly revenue grew</text:p>`)

	text, err := New().Extract(context.Background(), content, "report.odt")

	require.NoError(t, err)
	assert.Contains(t, text, "Quarterly revenue grew")
}

func TestExtractor_Extract_NotZip(t *testing.T) {
	_, err := New().Extract(context.Background(), []byte("not an archive"), "bad.odt")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
