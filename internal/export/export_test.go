package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/taskdraft/internal/store"
	"github.com/fumiama/go-docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument(template string) *store.Document {
	return &store.Document{
		ID:           "doc-1",
		TemplateType: template,
		Subject:      "Sistemas Informáticos",
		Topic:        "Procesos",
		Questions: []string{
			"(RA02_a) ¿Qué es un proceso?",
			"Pregunta libre sin código",
			"(RA01_b) ¿Qué es un hilo?",
		},
		Answers: map[int]string{
			0: "<p>RESPUESTA: un <strong>programa</strong> en ejecución.</p>",
			2: "",
		},
	}
}

// paragraphs renders doc and reads the text of every paragraph back.
func paragraphs(t *testing.T, doc *store.Document, opts Options) []string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, doc, opts))

	parsed, err := docx.Parse(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	var out []string
	for _, item := range parsed.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		var sb strings.Builder
		for _, child := range para.Children {
			run, ok := child.(*docx.Run)
			if !ok {
				continue
			}
			for _, rc := range run.Children {
				if txt, ok := rc.(*docx.Text); ok {
					sb.WriteString(txt.Text)
				}
			}
		}
		if s := strings.TrimSpace(sb.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func indexOf(t *testing.T, list []string, s string) int {
	t.Helper()
	for i, v := range list {
		if v == s {
			return i
		}
	}
	t.Fatalf("%q not found in %q", s, list)
	return -1
}

func TestRender_FOC(t *testing.T) {
	got := paragraphs(t, testDocument("FOC"), Options{Surname: "García López", Name: "Ana", DNI: "12345678z"})

	require.GreaterOrEqual(t, len(got), 4)
	assert.Equal(t, "CICLO: DAW", got[0])
	assert.Equal(t, "SISTEMAS INFORMÁTICOS", got[1])
	assert.Equal(t, "SISTEMAS INFORMÁTICOS Y PROCESOS", got[2])
	assert.Contains(t, got, "Alumno:")
	assert.Contains(t, got, "GARCÍA LÓPEZ ANA")
	assert.Contains(t, got, "12345678Z")
	assert.Contains(t, got, "© 2022 Fomento Ocupacional FOC SL todos los derechos reservados.")

	// sections follow the literal code order, so the fallback label sorts first
	idx := indexOf(t, got, "Índice")
	others := indexOf(t, got, "OTROS / RA NO ESPECIFICADO")
	ra01 := indexOf(t, got, "RA01_B")
	ra02 := indexOf(t, got, "RA02_A")
	assert.Less(t, idx, others)
	assert.Less(t, others, ra01)
	assert.Less(t, ra01, ra02)

	assert.Contains(t, got, "RESPUESTA: un programa en ejecución.")
	assert.Equal(t, 2, strings.Count(strings.Join(got, "\n"), Pending))
}

func TestRender_Custom(t *testing.T) {
	got := paragraphs(t, testDocument("custom"), Options{CoverSubtitle: "Entrega final", Name: "Ana"})

	require.NotEmpty(t, got)
	assert.Equal(t, "TITULO DEL DOCUMENTO", got[0])
	assert.Equal(t, "Entrega final", got[1])
	assert.Equal(t, "Ana", got[2])
	assert.NotContains(t, got, "CICLO: DAW")
}

func TestRender_Plain(t *testing.T) {
	got := paragraphs(t, testDocument("unknown"), Options{})
	require.NotEmpty(t, got)
	assert.Equal(t, "Índice", got[0])
	assert.Equal(t, "(Actualizar índice al finalizar)", got[1])
	assert.True(t, strings.HasPrefix(got[2], "Pregunta libre sin código"))
	assert.True(t, strings.HasPrefix(got[3], "(RA01_b) ¿Qué es un hilo?"))
}

func TestTemplateFor(t *testing.T) {
	assert.Equal(t, CoverFOC, TemplateFor("foc-2024").Cover)
	assert.Equal(t, CoverCustom, TemplateFor("Custom").Cover)
	assert.Equal(t, CoverNone, TemplateFor("").Cover)
	assert.Equal(t, "004785", TemplateFor("FOC").Accent)
	assert.Len(t, TemplateFor("FOC").Legal, 4)
}

func TestParseTemplates_Invalid(t *testing.T) {
	_, err := parseTemplates([]byte("PLAIN:\n  cover: banner\n"))
	assert.ErrorContains(t, err, "unknown cover")

	_, err = parseTemplates([]byte("FOC:\n  cover: foc\n  sizes: {body: 1, heading: 1, question: 1}\n"))
	assert.ErrorContains(t, err, "PLAIN preset is required")
}

func TestStudentName(t *testing.T) {
	assert.Equal(t, "APELLIDOS NOMBRE", StudentName("APELLIDOS", ""))
	assert.Equal(t, "ANA", StudentName(" ", "Ana"))
	assert.Equal(t, "PÉREZ ANA", StudentName("Pérez", "Ana"))
}

func TestParseAnswerHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Block
	}{
		{
			name: "plain text lines",
			in:   "Primera línea\n\nSegunda   línea",
			want: []Block{
				{Runs: []Run{{Text: "Primera línea"}}},
				{Runs: []Run{{Text: "Segunda línea"}}},
			},
		},
		{
			name: "inline styles",
			in:   "<p>Un <b>proceso</b> es <em>un <u>programa</u></em>.</p>",
			want: []Block{{Runs: []Run{
				{Text: "Un "},
				{Text: "proceso", Bold: true},
				{Text: " es "},
				{Text: "un ", Italic: true},
				{Text: "programa", Italic: true, Underline: true},
				{Text: "."},
			}}},
		},
		{
			name: "br and div split",
			in:   "<div>uno<br>dos</div><div>tres</div>",
			want: []Block{
				{Runs: []Run{{Text: "uno"}}},
				{Runs: []Run{{Text: "dos"}}},
				{Runs: []Run{{Text: "tres"}}},
			},
		},
		{
			name: "heading",
			in:   "<h2>DESARROLLO</h2><p>texto</p>",
			want: []Block{
				{Runs: []Run{{Text: "DESARROLLO"}}, Heading: true},
				{Runs: []Run{{Text: "texto"}}},
			},
		},
		{
			name: "entities",
			in:   "<p>a &amp; b&nbsp;&lt;c&gt; &quot;d&quot;</p>",
			want: []Block{{Runs: []Run{{Text: `a & b <c> "d"`}}}},
		},
		{
			name: "lists",
			in:   "<ul>\n<li>rápido</li>\n<li><strong>simple</strong></li>\n</ul>\n<ol><li><p>uno</p></li><li>dos</li></ol>",
			want: []Block{
				{Runs: []Run{{Text: "- rápido"}}},
				{Runs: []Run{{Text: "- "}, {Text: "simple", Bold: true}}},
				{Runs: []Run{{Text: "1. uno"}}},
				{Runs: []Run{{Text: "2. dos"}}},
			},
		},
		{
			name: "script skipped",
			in:   "<script>alert(1)</script><p>ok</p>",
			want: []Block{{Runs: []Run{{Text: "ok"}}}},
		},
		{
			name: "empty",
			in:   "<p> </p><p>&nbsp;</p>",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAnswerHTML(tt.in))
		})
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "AIDraft_Tarea_2025-03-07.docx", Filename(time.Date(2025, 3, 7, 23, 0, 0, 0, time.UTC)))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"SI_García López_Ana", "SI_García_López_Ana.docx"},
		{`a/b:c*d?"e"<f>|g`, "abcdefg.docx"},
		{"  __trabajo final.__ ", "trabajo_final.docx"},
		{"entrega.DOCX", "entrega.DOCX"},
		{"???", "documento.docx"},
		{strings.Repeat("x", 200), strings.Repeat("x", 116) + ".docx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), tt.in)
	}
}

func TestMetaFilename(t *testing.T) {
	assert.Equal(t, "ASIGNATURA_APELLIDOS_NOMBRE_DNI_TEMA.docx", MetaFilename(Options{}))
	assert.Equal(t, "SI_Pérez_Ana_DNI_Tema_3.docx", MetaFilename(Options{Subject: "SI", Surname: "Pérez", Name: "Ana", Topic: "Tema 3"}))
}
