package answer

import (
	"errors"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinAnswerChars is the visible length below which an answer counts as
// missing.
const MinAnswerChars = 20

var (
	ErrEmptyAnswer = errors.New("empty answer")
	ErrPromptEcho  = errors.New("answer repeats the drafting instructions")
)

var (
	tagRe = regexp.MustCompile(`<[^>]*>`)

	echoPattern = regexp.MustCompile(
		`(?i)(INSTRUCCIONES:|PRIORIDAD DE FUENTES|FORMATO OBLIGATORIO|` +
			`PROHIBIDO usar (asteriscos|almohadillas)|` +
			`ignore\s+(previous|all|above)\s+instructions|system\s*prompt)`,
	)
)

// PlainText strips markup and decodes entities from a stored answer.
func PlainText(answer string) string {
	s := tagRe.ReplaceAllString(answer, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

// NeedsAnswer reports whether a stored answer is still missing or too short
// to keep.
func NeedsAnswer(answer string) bool {
	return utf8.RuneCountInString(PlainText(answer)) < MinAnswerChars
}

// ValidateDraft checks raw model output before it is stored.
func ValidateDraft(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyAnswer
	}
	if echoPattern.MatchString(text) {
		return ErrPromptEcho
	}
	return nil
}
