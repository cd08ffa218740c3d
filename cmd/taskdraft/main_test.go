package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/taskdraft/internal/segment"
	"github.com/fumiama/go-docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statement = `Lee el tema antes de empezar.
(RA02_a) Explica qué es un proceso.
Incluye un ejemplo.
(RA01_b) Explica qué es un hilo.
Pregunta 3: ¿Qué es un semáforo?
`

func writeStatement(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadStatement(t *testing.T) {
	seg, err := loadStatement(context.Background(), writeStatement(t, "tarea.txt", statement))
	require.NoError(t, err)

	assert.Equal(t, 1, seg.Dropped)
	require.Len(t, seg.Questions, 3)
	assert.Equal(t, "(RA02_a) Explica qué es un proceso.\nIncluye un ejemplo.", seg.Questions[0])
}

func TestLoadStatementUnstructured(t *testing.T) {
	seg, err := loadStatement(context.Background(), writeStatement(t, "ensayo.md", "Redacta un ensayo breve sobre redes."))
	require.NoError(t, err)
	assert.Equal(t, []string{"Redacta un ensayo breve sobre redes."}, seg.Questions)
}

func TestLoadStatementErrors(t *testing.T) {
	_, err := loadStatement(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	_, err = loadStatement(context.Background(), writeStatement(t, "tarea.xyz", "1. algo"))
	assert.Error(t, err)

	_, err = loadStatement(context.Background(), writeStatement(t, "vacio.txt", "  \n"))
	assert.Error(t, err)
}

func TestRenderGroups(t *testing.T) {
	groups := segment.GroupByCode([]string{"(RA02_a) Segunda\nmás texto", "Libre", "(RA02_a) Otra"}, nil)
	out := renderGroups(groups)

	assert.Contains(t, out, "RA02_A")
	assert.Contains(t, out, segment.Unspecified)
	assert.Contains(t, out, "1. (RA02_a) Segunda")
	assert.NotContains(t, out, "más texto")
	assert.Less(t, strings.Index(out, segment.Unspecified), strings.Index(out, "RA02_A"))
}

func TestSegmentCommandJSON(t *testing.T) {
	path := writeStatement(t, "tarea.txt", statement)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"segment", "--json", path})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), `"dropped_lines": 1`)
	assert.Contains(t, out.String(), "Pregunta 3: ¿Qué es un semáforo?")
}

func TestExportCommand(t *testing.T) {
	path := writeStatement(t, "tarea.txt", statement)
	target := filepath.Join(t.TempDir(), "out.docx")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"export", path, "-o", target, "--template", "PLAIN"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "3 questions")

	f, err := os.Open(target)
	require.NoError(t, err)
	defer f.Close()
	info, err := f.Stat()
	require.NoError(t, err)
	_, err = docx.Parse(f, info.Size())
	require.NoError(t, err)
}
