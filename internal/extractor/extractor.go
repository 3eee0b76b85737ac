package extractor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrInvalidInput means the path does not point to a readable PDF file.
	ErrInvalidInput = errors.New("invalid input document")
	// ErrCorruptDocument means the PDF content could not be read.
	ErrCorruptDocument = errors.New("corrupt document")
	// ErrExtraction covers any other extraction failure, including a
	// document that yields no text at all.
	ErrExtraction = errors.New("extraction failed")
)

// ExtractText returns the full concatenated text of the PDF at path, in page
// order. The file must exist and carry a .pdf extension.
func ExtractText(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s is not an existing file", ErrInvalidInput, path)
	}
	if strings.ToLower(filepath.Ext(path)) != ".pdf" {
		return "", fmt.Errorf("%w: %s is not a PDF file", ErrInvalidInput, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	defer f.Close()

	reader, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}

	var text strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrCorruptDocument, i, err)
		}
		text.WriteString(pageText)
	}

	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("%w: no text extracted from %s", ErrExtraction, path)
	}
	return text.String(), nil
}
