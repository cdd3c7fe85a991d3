package source

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFLoader extracts page text from PDF files, one "Page N" section per
// non-empty page. When FallbackPdftotext is set and the Go extractor fails,
// the pdftotext binary is tried.
type PDFLoader struct {
	FallbackPdftotext bool
}

func (l *PDFLoader) Load(r io.Reader, filename string) (string, error) {
	// ledongthuc/pdf opens by path.
	tmp, err := os.CreateTemp("", "mdmarkup-pdf-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	text, err := extractPDFText(tmpPath)
	if err != nil && l.FallbackPdftotext {
		text, err = extractPdftotext(tmpPath)
	}
	if err != nil {
		return "", fmt.Errorf("extract pdf text %s: %w", filename, err)
	}
	return pagesToMarkdown(text), nil
}

// pagesToMarkdown splits form-feed separated page text into sections.
func pagesToMarkdown(text string) string {
	var blocks []string
	for i, page := range strings.Split(text, "\f") {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		blocks = append(blocks, headingLine(2, fmt.Sprintf("Page %d", i+1)), page)
	}
	return joinBlocks(blocks)
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if i > 1 {
			buf.WriteString("\f")
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	out, err := exec.Command("pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
