package extract

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
)

// Extractor converts raw corpus files into plain text. PDF extraction runs a
// fallback chain and degrades to a placeholder string instead of failing;
// image OCR failures propagate to the caller.
type Extractor struct {
	ocr OCR
}

func New(ocr OCR) *Extractor {
	return &Extractor{ocr: ocr}
}

// ImageText OCRs a scanned image. There is no fallback for images, so an
// engine error is returned as-is and the file gets skipped upstream.
func (e *Extractor) ImageText(path string) (string, error) {
	text, err := e.ocr.ImageFile(path)
	if err != nil {
		return "", fmt.Errorf("ocr image: %w", err)
	}
	return text, nil
}

type pdfStage struct {
	name string
	run  func(path string) (string, error)
}

func (e *Extractor) pdfChain() []pdfStage {
	return []pdfStage{
		{name: "rasterize-ocr", run: e.pdfOCR},
		{name: "embedded-text", run: pdfEmbeddedText},
		{name: "page-text", run: pdfPageText},
	}
}

// PDFText tries each extraction stage in order and keeps the first one that
// produces non-empty text. When every stage fails the file is represented by
// a placeholder so the rest of the corpus still loads.
func (e *Extractor) PDFText(path string) string {
	for _, stage := range e.pdfChain() {
		text, err := stage.run(path)
		if err != nil {
			slog.Warn("pdf extraction stage failed", "stage", stage.name, "file", path, "error", err)
			continue
		}
		if strings.TrimSpace(text) != "" {
			return text
		}
	}
	return fmt.Sprintf("PDF file: %s (processing failed)", path)
}

// pdfOCR rasterizes every page and OCRs the renders, pages joined by a blank
// line. Scanned clinical protocols carry no embedded text, so this stage runs
// first.
func (e *Extractor) pdfOCR(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.Image(n)
		if err != nil {
			return "", fmt.Errorf("rasterize page %d: %w", n, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return "", fmt.Errorf("encode page %d: %w", n, err)
		}
		text, err := e.ocr.ImageBytes(buf.Bytes())
		if err != nil {
			return "", fmt.Errorf("ocr page %d: %w", n, err)
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n\n"), nil
}

func pdfEmbeddedText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, reader); err != nil {
		return "", fmt.Errorf("read extracted text: %w", err)
	}
	return buf.String(), nil
}

func pdfPageText(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		text, err := doc.Text(n)
		if err != nil {
			return "", fmt.Errorf("page %d text: %w", n, err)
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n\n"), nil
}

// PlainText reads a text file verbatim behind the standard document header.
func (e *Extractor) PlainText(path, filename, category string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read text file: %w", err)
	}
	return DocumentHeader(filename, category) + string(content), nil
}

// DocumentHeader is the provenance preamble prepended to text and tabular
// documents so retrieved chunks can name their source.
func DocumentHeader(filename, category string) string {
	return fmt.Sprintf("Document: %s\nCategory: %s\n%s\n", filename, category, strings.Repeat("=", 50))
}
