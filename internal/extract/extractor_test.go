package extract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOCR struct {
	text string
	err  error
}

func (f *fakeOCR) ImageFile(path string) (string, error)  { return f.text, f.err }
func (f *fakeOCR) ImageBytes(data []byte) (string, error) { return f.text, f.err }

func TestImageText(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		e := New(&fakeOCR{text: "scanned protocol text"})
		text, err := e.ImageText("scan.png")
		assert.NoError(t, err)
		assert.Equal(t, "scanned protocol text", text)
	})

	t.Run("Engine Error Propagates", func(t *testing.T) {
		e := New(&fakeOCR{err: errors.New("tesseract unavailable")})
		_, err := e.ImageText("scan.png")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "ocr image")
	})
}

func TestPDFTextPlaceholder(t *testing.T) {
	// Every stage fails on a nonexistent file; the corpus still gets an entry.
	e := New(&fakeOCR{err: errors.New("no engine")})
	text := e.PDFText("missing/protocol.pdf")
	assert.Equal(t, "PDF file: missing/protocol.pdf (processing failed)", text)
}

func TestPlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contacts.txt")
	require.NoError(t, os.WriteFile(path, []byte("Ward 76: 6394-1076"), 0o600))

	e := New(&fakeOCR{})
	text, err := e.PlainText(path, "contacts.txt", "Useful Phone Numbers")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "Document: contacts.txt\nCategory: Useful Phone Numbers\n"))
	assert.Contains(t, text, strings.Repeat("=", 50))
	assert.True(t, strings.HasSuffix(text, "Ward 76: 6394-1076"))
}

func TestDocumentHeader(t *testing.T) {
	header := DocumentHeader("guide.pdf", "Procedures")
	assert.Equal(t, "Document: guide.pdf\nCategory: Procedures\n"+strings.Repeat("=", 50)+"\n", header)
}
