package parser

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"
)

func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	w := docx.New().WithDefaultTheme()
	for _, text := range paragraphs {
		w.AddParagraph().AddText(text)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	return buf.Bytes()
}

func TestDOCXParser_ParagraphLines(t *testing.T) {
	data := buildDocx(t, "Actividad 1", "  Describe la arquitectura.  ", "", "Actividad 2")

	p := &DOCXParser{}
	got, err := p.Extract(context.Background(), bytes.NewReader(data), "tarea.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Actividad 1\nDescribe la arquitectura.\nActividad 2"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestDOCXParser_InvalidInput(t *testing.T) {
	p := &DOCXParser{}
	_, err := p.Extract(context.Background(), strings.NewReader("PK not really"), "broken.docx")
	if err == nil {
		t.Fatal("expected error for invalid docx")
	}
}
