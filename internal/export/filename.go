package export

import (
	"regexp"
	"strings"
	"time"
)

// ContentType is the MIME type of exported files.
const ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const maxFilenameStem = 116

var (
	reservedChars = regexp.MustCompile(`[\\/:*?"<>|]`)
	separatorRuns = regexp.MustCompile(`[\s_]+`)
	edgeRuns      = regexp.MustCompile(`^[_.\s]+|[_.\s]+$`)
)

// Filename is the default download name for an export made at t.
func Filename(t time.Time) string {
	return "AIDraft_Tarea_" + t.Format("2006-01-02") + ".docx"
}

// MetaFilename builds the name students submit with:
// ASIGNATURA_APELLIDOS_NOMBRE_DNI_TEMA.docx, with placeholders for blanks.
func MetaFilename(o Options) string {
	parts := []string{
		firstNonEmpty(o.Subject, "ASIGNATURA"),
		firstNonEmpty(o.Surname, "APELLIDOS"),
		firstNonEmpty(o.Name, "NOMBRE"),
		firstNonEmpty(o.DNI, "DNI"),
		firstNonEmpty(o.Topic, "TEMA"),
	}
	return SanitizeFilename(strings.Join(parts, "_"))
}

// SanitizeFilename makes name safe on Windows and macOS and ensures the
// .docx extension.
func SanitizeFilename(name string) string {
	s := reservedChars.ReplaceAllString(name, "")
	s = separatorRuns.ReplaceAllString(s, "_")
	s = edgeRuns.ReplaceAllString(s, "")
	if r := []rune(s); len(r) > maxFilenameStem {
		s = string(r[:maxFilenameStem])
	}
	if s == "" {
		return "documento.docx"
	}
	if !strings.HasSuffix(strings.ToLower(s), ".docx") {
		s += ".docx"
	}
	return s
}
