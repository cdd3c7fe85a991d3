package source

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// MarkdownLoader passes markdown files through unchanged.
type MarkdownLoader struct{}

func (l *MarkdownLoader) Load(r io.Reader, filename string) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	return string(src), nil
}

// TextLoader handles plain text files. Paragraphs are separated by exactly
// one blank line; whitespace-only lines count as blank.
type TextLoader struct{}

func (l *TextLoader) Load(r io.Reader, filename string) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}

	return strings.Join(paragraphs, "\n\n"), nil
}
