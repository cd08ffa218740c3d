package segment

import (
	"regexp"
	"sort"
	"strings"
)

// Unspecified is the group label for questions without an RA code.
const Unspecified = "OTROS / RA NO ESPECIFICADO"

var (
	// strictRA matches RA04_a or (RA04_a) anywhere in the text.
	strictRA = regexp.MustCompile(`(?i)\(?(RA\d+_[a-z])\)?`)

	// looseRA matches R.A. 4.a, RA 4_b and similar. Submatches are the two
	// letters, the digits, the separator and the trailing word.
	looseRA = regexp.MustCompile(`(?i)(R)\.?(A)\.?[\s\p{Zs}]*(\d+)([._])(\w+)`)
)

// ExtractRA derives the normalized RA code of a question. The strict form is
// tried first. Loose codes are not zero-padded, so "R.A. 4.a" yields "RA4.A"
// while "RA04_a" yields "RA04_A".
func ExtractRA(question string) (string, bool) {
	if m := strictRA.FindStringSubmatch(question); m != nil {
		return strings.ToUpper(m[1]), true
	}
	if m := looseRA.FindStringSubmatch(question); m != nil {
		return strings.ToUpper(m[1] + m[2] + m[3] + m[4] + m[5]), true
	}
	return "", false
}

// CodeFor returns the grouping key of a question/answer pair. Only the
// question text is inspected.
func CodeFor(question, answer string) string {
	if code, ok := ExtractRA(question); ok {
		return code
	}
	return Unspecified
}

// Item is one question/answer pair within a group.
type Item struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Index    int    `json:"index"`
}

// Group is the set of questions sharing an RA code.
type Group struct {
	Code  string `json:"code"`
	Items []Item `json:"items"`
}

// GroupByCode buckets questions by RA code. answers is keyed by question
// index; missing answers are empty. Items keep their original relative order
// and groups are sorted by code string.
func GroupByCode(questions []string, answers map[int]string) []Group {
	byCode := make(map[string][]Item)
	for i, q := range questions {
		a := answers[i]
		code := CodeFor(q, a)
		byCode[code] = append(byCode[code], Item{Question: q, Answer: a, Index: i})
	}

	codes := make([]string, 0, len(byCode))
	for code := range byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	groups := make([]Group, 0, len(codes))
	for _, code := range codes {
		groups = append(groups, Group{Code: code, Items: byCode[code]})
	}
	return groups
}
