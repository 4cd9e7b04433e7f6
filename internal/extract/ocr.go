package extract

import (
	"github.com/otiai10/gosseract/v2"
)

// OCR converts a scanned image into text. Implementations are expected to be
// safe for sequential reuse; the loader never calls them concurrently.
type OCR interface {
	ImageFile(path string) (string, error)
	ImageBytes(data []byte) (string, error)
}

// TesseractOCR runs the local Tesseract engine via gosseract. A fresh client
// is created per call: gosseract clients are not safe to reuse after errors.
type TesseractOCR struct {
	Languages []string
}

func NewTesseractOCR() *TesseractOCR {
	return &TesseractOCR{Languages: []string{"eng"}}
}

func (t *TesseractOCR) ImageFile(path string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(t.Languages...); err != nil {
		return "", err
	}
	if err := client.SetImage(path); err != nil {
		return "", err
	}
	return client.Text()
}

func (t *TesseractOCR) ImageBytes(data []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(t.Languages...); err != nil {
		return "", err
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", err
	}
	return client.Text()
}
