package segment

import (
	"strings"
	"unicode"
)

// Segmentation is the detailed result of splitting raw text.
type Segmentation struct {
	Questions []string `json:"questions"`
	// Dropped counts non-empty lines seen before the first header. They are
	// not part of any question.
	Dropped int `json:"dropped_lines"`
}

// Structured reports whether at least one header was found.
func (s Segmentation) Structured() bool {
	return len(s.Questions) > 0
}

// Lines splits raw on \n or \r\n, trims each line and drops empty ones.
// Unicode spaces and a byte-order mark count as whitespace.
func Lines(raw string) []string {
	parts := strings.Split(raw, "\n")
	lines := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimFunc(p, isSpace)
		if p != "" {
			lines = append(lines, p)
		}
	}
	return lines
}

// Questions splits raw text into questions in document order. Each question
// starts at a header line and runs until the next header or the end of input.
// Text before the first header is discarded. The result is never nil.
func Questions(raw string) []string {
	return Analyze(raw).Questions
}

// Analyze is Questions plus bookkeeping about discarded preamble lines.
func Analyze(raw string) Segmentation {
	seg := Segmentation{Questions: []string{}}

	var current strings.Builder
	open := false

	flush := func() {
		if !open {
			return
		}
		if q := strings.TrimSpace(current.String()); q != "" {
			seg.Questions = append(seg.Questions, q)
		}
		current.Reset()
	}

	for _, line := range Lines(raw) {
		if IsHeader(line) {
			flush()
			current.WriteString(line)
			open = true
			continue
		}
		if !open {
			seg.Dropped++
			continue
		}
		current.WriteString("\n")
		current.WriteString(line)
	}
	flush()

	return seg
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}
