package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"unicode/utf8"

	pdflib "github.com/ledongthuc/pdf"
)

// NoSelectableText is appended when a PDF yields almost no text, which
// usually means a scanned document.
const NoSelectableText = "[AVISO: No se detectó texto seleccionable.]"

// minPDFChars is the threshold below which NoSelectableText is appended.
const minPDFChars = 10

// PDFParser handles PDF files. It tries the Go library first,
// then falls back to pdftotext if available.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Extract(ctx context.Context, r io.Reader, filename string) (string, error) {
	// ledongthuc/pdf opens by path, so we write to a temp file.
	tmp, err := os.CreateTemp("", "taskdraft-pdf-*.pdf")
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
	if (err != nil || strings.TrimSpace(text) == "") && p.FallbackPdftotext {
		// an empty library result is kept when pdftotext is missing too
		if alt, altErr := extractPdftotext(ctx, tmpPath); altErr == nil {
			text, err = alt, nil
		}
	}
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	return withScanNotice(text), nil
}

func withScanNotice(text string) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\f", "\n"))
	if utf8.RuneCountInString(text) < minPDFChars {
		return strings.TrimSpace(text + "\n" + NoSelectableText)
	}
	return text
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i > 1 {
			buf.WriteString("\f")
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractPdftotext(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", "-enc", "UTF-8", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
