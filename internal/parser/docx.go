package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Each paragraph becomes one line; table
// cells are read row by row.
type DOCXParser struct{}

func (p *DOCXParser) Extract(ctx context.Context, r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}

	var w lineWriter
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			w.line(docxParagraphText(it))
		case *docx.Table:
			for _, row := range it.TableRows {
				for _, cell := range row.TableCells {
					for _, para := range cell.Paragraphs {
						w.line(docxParagraphText(para))
					}
				}
			}
		}
	}
	return w.String(), nil
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
