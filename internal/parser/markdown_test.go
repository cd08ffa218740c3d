package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/dgallion1/taskdraft/internal/segment"
)

func TestMarkdownParser_HeadingsBecomeLines(t *testing.T) {
	input := `# Tarea 2

Lee el enunciado.

## Pregunta 1

Explica **qué** es un proceso.
Con ejemplos.

## Pregunta 2

Compara hilos y procesos.
`
	p := &MarkdownParser{}
	got, err := p.Extract(context.Background(), strings.NewReader(input), "tarea.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Tarea 2\nLee el enunciado.\nPregunta 1\nExplica qué es un proceso.\nCon ejemplos.\nPregunta 2\nCompara hilos y procesos."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestMarkdownParser_OrderedListKeepsNumbers(t *testing.T) {
	input := "Responde:\n\n1. Define proceso.\n2. Define hilo.\n\n3) Con paréntesis.\n"
	p := &MarkdownParser{}
	got, err := p.Extract(context.Background(), strings.NewReader(input), "lista.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	questions := segment.Questions(got)
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions from %q, got %d: %q", got, len(questions), questions)
	}
	if questions[0] != "1. Define proceso." {
		t.Errorf("expected %q, got %q", "1. Define proceso.", questions[0])
	}
	if questions[2] != "3) Con paréntesis." {
		t.Errorf("expected %q, got %q", "3) Con paréntesis.", questions[2])
	}
}

func TestMarkdownParser_CodeBlocks(t *testing.T) {
	input := "## Actividad 1\n\nEjecuta:\n\n```\nls -la\ncat /etc/hosts\n```\n\nY comenta la salida.\n"
	p := &MarkdownParser{}
	got, err := p.Extract(context.Background(), strings.NewReader(input), "api.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "ls -la\ncat /etc/hosts") {
		t.Errorf("expected code block lines in text, got %q", got)
	}
	if !strings.HasSuffix(got, "Y comenta la salida.") {
		t.Errorf("expected trailing paragraph, got %q", got)
	}
}

func TestMarkdownParser_BulletList(t *testing.T) {
	p := &MarkdownParser{}
	got, err := p.Extract(context.Background(), strings.NewReader("- uno\n- dos\n"), "b.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "- uno\n- dos" {
		t.Errorf("expected %q, got %q", "- uno\n- dos", got)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	got, err := p.Extract(context.Background(), strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty text, got %q", got)
	}
}
