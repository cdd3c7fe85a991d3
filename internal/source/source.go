package source

import (
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strings"
)

// Loader converts raw document bytes into markdown text.
type Loader interface {
	Load(r io.Reader, filename string) (string, error)
}

// UnsupportedError reports a file extension no Loader handles.
type UnsupportedError struct {
	Ext string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported file extension: %q", e.Ext)
}

// SupportedExtensions lists file extensions ForFile can handle.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the Loader for a filename's extension.
func ForFile(filename string) (Loader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return &MarkdownLoader{}, nil
	case ".txt":
		return &TextLoader{}, nil
	case ".csv":
		return &CSVLoader{}, nil
	case ".html", ".htm":
		return &HTMLLoader{}, nil
	case ".pdf":
		return &PDFLoader{}, nil
	case ".docx":
		return &DOCXLoader{}, nil
	default:
		return nil, &UnsupportedError{Ext: ext}
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Extensions returns the supported extensions in sorted order.
func Extensions() []string {
	return slices.Sorted(maps.Keys(SupportedExtensions))
}

// joinBlocks joins non-empty blocks with blank lines.
func joinBlocks(blocks []string) string {
	var kept []string
	for _, b := range blocks {
		if b = strings.TrimSpace(b); b != "" {
			kept = append(kept, b)
		}
	}
	return strings.Join(kept, "\n\n")
}

func headingLine(level int, text string) string {
	return strings.Repeat("#", level) + " " + text
}
