// Package export renders task documents as DOCX files.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/taskdraft/internal/segment"
	"github.com/dgallion1/taskdraft/internal/store"
	"github.com/fumiama/go-docx"
)

// Pending marks questions without an answer in the exported file.
const Pending = "[Respuesta pendiente]"

// Options carries the cover metadata entered at export time. Empty fields
// fall back to the document's values or to placeholders.
type Options struct {
	Subject       string `json:"asignatura"`
	Topic         string `json:"tema"`
	Surname       string `json:"apellidos"`
	Name          string `json:"nombre"`
	DNI           string `json:"dni"`
	CoverTitle    string `json:"cover_titulo"`
	CoverSubtitle string `json:"cover_subtitulo"`
}

type renderer struct {
	w    *docx.Docx
	tmpl Template
}

// Render writes doc as a DOCX file: cover page, question index, then one
// section per RA group with every question and its answer.
func Render(out io.Writer, doc *store.Document, opts Options) error {
	r := &renderer{
		w:    docx.New().WithDefaultTheme(),
		tmpl: TemplateFor(doc.TemplateType),
	}

	switch r.tmpl.Cover {
	case CoverFOC:
		r.focCover(doc, opts)
	case CoverCustom:
		r.customCover(opts)
	}

	groups := segment.GroupByCode(doc.Questions, doc.Answers)
	r.index(groups)
	for _, g := range groups {
		r.section(g)
	}

	if _, err := r.w.WriteTo(out); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

func (r *renderer) focCover(doc *store.Document, opts Options) {
	s := r.tmpl.Sizes
	subject := strings.ToUpper(firstNonEmpty(opts.Subject, doc.Subject, "ASIGNATURA"))
	topic := strings.ToUpper(firstNonEmpty(opts.Topic, doc.Topic, "TEMA"))

	r.styled("end", r.tmpl.Cycle, s.Meta)
	r.styled("end", subject, s.Meta)
	r.blank(2)

	title := firstNonEmpty(opts.CoverTitle, subject+" Y "+topic)
	r.styled("center", strings.ToUpper(title), s.Title)
	r.blank(2)

	r.styled("end", "Alumno:", s.Student)
	r.styled("end", StudentName(opts.Surname, opts.Name), s.Student)
	if dni := strings.TrimSpace(opts.DNI); dni != "" && dni != "DNI" {
		r.styled("end", strings.ToUpper(dni), s.Student)
	}
	r.pageBreak()

	for _, text := range r.tmpl.Legal {
		r.w.AddParagraph().Justification("both").AddText(text).Size(size(s.Legal))
	}
	if r.tmpl.Copyright != "" {
		r.w.AddParagraph().AddText(r.tmpl.Copyright).Size(size(s.Legal)).Italic()
	}
	r.pageBreak()
}

// StudentName formats the cover name, ignoring the form placeholders.
func StudentName(surname, name string) string {
	var parts []string
	for _, p := range []string{surname, name} {
		p = strings.TrimSpace(p)
		if p != "" && p != "APELLIDOS" && p != "NOMBRE" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "APELLIDOS NOMBRE"
	}
	return strings.ToUpper(strings.Join(parts, " "))
}

func (r *renderer) customCover(opts Options) {
	s := r.tmpl.Sizes
	r.blank(6)
	title := strings.ToUpper(firstNonEmpty(opts.CoverTitle, r.tmpl.DefaultTitle))
	r.styled("center", title, s.Title)

	if sub := strings.TrimSpace(opts.CoverSubtitle); sub != "" {
		r.w.AddParagraph().Justification("center").
			AddText(sub).Size(size(s.Subtitle)).Color(r.tmpl.SubtitleColor)
	}
	if author := strings.TrimSpace(opts.Name); author != "" {
		r.blank(4)
		r.styled("end", author, s.Student)
	}
	r.pageBreak()
}

func (r *renderer) index(groups []segment.Group) {
	s := r.tmpl.Sizes
	r.w.AddParagraph().AddText("Índice").Bold().Size(size(s.Heading))
	r.w.AddParagraph().AddText("(Actualizar índice al finalizar)").Italic().Size("20").Color("888888")
	r.blank(1)

	for _, g := range groups {
		for _, item := range g.Items {
			p := r.w.AddParagraph()
			p.AddText(item.Question + " ")
			p.AddText("................................................ (pág. manual)").Color("CCCCCC")
		}
	}
	r.pageBreak()
}

func (r *renderer) section(g segment.Group) {
	s := r.tmpl.Sizes
	r.styled("", g.Code, s.Heading)
	r.blank(1)

	for _, item := range g.Items {
		r.styled("", item.Question, s.Question)

		blocks := ParseAnswerHTML(item.Answer)
		if len(blocks) == 0 {
			r.w.AddParagraph().AddText(Pending).Italic().Color("999999")
		}
		for _, b := range blocks {
			p := r.w.AddParagraph()
			for _, run := range b.Runs {
				t := p.AddText(run.Text).Size(size(s.Body))
				if run.Bold || b.Heading {
					t.Bold()
				}
				if run.Italic {
					t.Italic()
				}
				if run.Underline {
					t.Underline("single")
				}
			}
		}
		r.blank(1)
	}
}

// styled adds a bold one-run paragraph in the template's accent colour.
func (r *renderer) styled(justify, text string, sz int) {
	p := r.w.AddParagraph()
	if justify != "" {
		p.Justification(justify)
	}
	p.AddText(text).Size(size(sz)).Color(r.tmpl.Accent).Bold()
}

func (r *renderer) blank(n int) {
	for range n {
		r.w.AddParagraph()
	}
}

func (r *renderer) pageBreak() {
	r.w.AddParagraph().AddPageBreaks()
}

func size(halfPoints int) string {
	return strconv.Itoa(halfPoints)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
