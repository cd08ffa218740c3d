// Package segment splits extracted task-statement text into questions and
// derives the RA (learning outcome) code used to group them at export time.
//
// Everything here is a pure function over strings. There is no I/O and no
// shared mutable state, so callers may use it from any number of goroutines.
package segment

import (
	"regexp"
	"strings"
)

// HeaderPattern recognizes a line that opens a new question.
type HeaderPattern struct {
	Name string
	re   *regexp.Regexp
}

// Match reports whether line starts with this pattern.
func (p HeaderPattern) Match(line string) bool {
	return p.re.MatchString(line)
}

func (p HeaderPattern) String() string {
	return p.Name
}

// space stands in for \s in header patterns. PDF and DOCX extraction often
// leaves no-break spaces, em spaces or a byte-order mark where ASCII spaces
// were typed.
const space = `[\s\p{Zs}\x{FEFF}]`

func header(name, expr string) HeaderPattern {
	return HeaderPattern{Name: name, re: regexp.MustCompile(strings.ReplaceAll(expr, `\s`, space))}
}

// HeaderPatterns is checked in order and the first match wins. RA-style codes
// come before the generic numeric enumerator. Every pattern is anchored to the
// start of the line.
var HeaderPatterns = []HeaderPattern{
	header("ra-code", `(?i)^\s*\(?RA\d+_[a-z]\)?`),  // RA04_a, (RA04_a)
	header("ra-loose", `(?i)^\s*\(?RA\s*\d+`),       // RA4, (RA 04
	header("ra-dotted", `(?i)^\s*R\.?A\.?\s*\d+`),   // R.A. 4
	header("actividad", `(?i)^\s*Actividad\s+\d+`),  // Actividad 1
	header("pregunta", `(?i)^\s*Pregunta\.?\s*\d+`), // Pregunta 1, Pregunta. 1
	header("parte", `(?i)^\s*PARTE\s+\w+`),          // PARTE A
	header("enumerator", `^\s*\d+[.)]\s+`),          // 1. , 2)
}

// Classify returns the first header pattern matching line. Remaining patterns
// are not consulted once one matches.
func Classify(line string) (HeaderPattern, bool) {
	for _, p := range HeaderPatterns {
		if p.Match(line) {
			return p, true
		}
	}
	return HeaderPattern{}, false
}

// IsHeader reports whether line opens a new question.
func IsHeader(line string) bool {
	_, ok := Classify(line)
	return ok
}
