// Package parser extracts the plain text of an uploaded task statement.
// Every format is reduced to lines of text; block structure such as
// headings and list items becomes one line each so the segmenter can see
// question headers at the start of a line.
package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/taskdraft/internal/llm"
)

// ErrUnsupportedFormat is returned for file extensions with no parser.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Parser converts raw document bytes into plain text.
type Parser interface {
	Extract(ctx context.Context, r io.Reader, filename string) (string, error)
}

// Options configures the parsers that need collaborators.
type Options struct {
	PDFFallbackPdftotext bool

	// Vision transcribes images. Image uploads fail without it.
	Vision llm.Provider
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
	".png":      true,
	".jpg":      true,
	".jpeg":     true,
	".gif":      true,
	".webp":     true,
	".bmp":      true,
	".tif":      true,
	".tiff":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff":
		return &ImageParser{Vision: opts.Vision}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Extract picks the parser for filename and returns its normalized text.
func Extract(ctx context.Context, r io.Reader, filename string, opts Options) (string, error) {
	p, err := ForFile(filename, opts)
	if err != nil {
		return "", err
	}
	text, err := p.Extract(ctx, r, filename)
	if err != nil {
		return "", err
	}
	return Normalize(text), nil
}

// Normalize makes text valid UTF-8 with \n line endings and no BOM.
func Normalize(text string) string {
	text = strings.ToValidUTF8(text, "")
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\u00a0", " ")
	return strings.TrimSpace(text)
}

// lineWriter joins non-empty lines with \n.
type lineWriter struct {
	b strings.Builder
}

func (w *lineWriter) line(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	if w.b.Len() > 0 {
		w.b.WriteByte('\n')
	}
	w.b.WriteString(s)
}

func (w *lineWriter) String() string { return w.b.String() }
