package export

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Run is a span of text with uniform styling.
type Run struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
}

// Block is one paragraph of an answer.
type Block struct {
	Runs    []Run
	Heading bool
}

// Text returns the block's plain text.
func (b Block) Text() string {
	var sb strings.Builder
	for _, r := range b.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.Blockquote: true, atom.Pre: true, atom.Tr: true,
	atom.Ul: true, atom.Ol: true,
}

type list struct {
	ordered bool
	n       int
}

type answerParser struct {
	blocks []Block
	cur    Block

	bold, italic, underline int
	skip                    int
	lists                   []list

	// list marker waiting for the item's first text
	marker string
}

// ParseAnswerHTML splits an editor answer into paragraphs of styled runs.
// Block tags and newlines start a new paragraph; b/strong, i/em and u
// style the text inside them. Entities are decoded.
func ParseAnswerHTML(s string) []Block {
	p := &answerParser{}
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				// unparsable tail; keep what was read
				p.text(string(z.Raw()))
			}
			p.flush()
			return p.blocks
		case html.TextToken:
			if p.skip == 0 {
				p.text(string(z.Text()))
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			p.start(atom.Lookup(name), tt == html.SelfClosingTagToken)
		case html.EndTagToken:
			name, _ := z.TagName()
			p.end(atom.Lookup(name))
		}
	}
}

func (p *answerParser) start(a atom.Atom, selfClosing bool) {
	switch a {
	case atom.Script, atom.Style:
		if !selfClosing {
			p.skip++
		}
		return
	case atom.B, atom.Strong:
		p.bold++
		return
	case atom.I, atom.Em:
		p.italic++
		return
	case atom.U:
		p.underline++
		return
	}
	if !blockAtoms[a] {
		return
	}
	p.flush()
	switch a {
	case atom.H1, atom.H2, atom.H3, atom.H4:
		p.cur.Heading = true
	case atom.Ul, atom.Ol:
		p.lists = append(p.lists, list{ordered: a == atom.Ol})
	case atom.Li:
		p.listMarker()
	}
}

func (p *answerParser) end(a atom.Atom) {
	switch a {
	case atom.Script, atom.Style:
		if p.skip > 0 {
			p.skip--
		}
	case atom.B, atom.Strong:
		p.bold = max(p.bold-1, 0)
	case atom.I, atom.Em:
		p.italic = max(p.italic-1, 0)
	case atom.U:
		p.underline = max(p.underline-1, 0)
	case atom.Ul, atom.Ol:
		p.flush()
		if len(p.lists) > 0 {
			p.lists = p.lists[:len(p.lists)-1]
		}
	case atom.Li:
		p.flush()
		p.marker = ""
	default:
		if blockAtoms[a] {
			p.flush()
		}
	}
}

func (p *answerParser) listMarker() {
	p.marker = "- "
	if len(p.lists) == 0 {
		return
	}
	l := &p.lists[len(p.lists)-1]
	if l.ordered {
		l.n++
		p.marker = fmt.Sprintf("%d. ", l.n)
	}
}

func (p *answerParser) text(s string) {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			p.flush()
		}
		p.add(line)
	}
}

// add appends text to the current block, collapsing whitespace and merging
// with the previous run when the styles match.
func (p *answerParser) add(s string) {
	s = collapseSpace(s)
	if s == "" {
		return
	}
	if p.marker != "" && strings.TrimSpace(s) != "" {
		p.cur.Runs = append(p.cur.Runs, Run{Text: p.marker})
		p.marker = ""
		s = strings.TrimLeft(s, " ")
	}
	r := Run{Text: s, Bold: p.bold > 0, Italic: p.italic > 0, Underline: p.underline > 0}
	if n := len(p.cur.Runs); n > 0 {
		last := &p.cur.Runs[n-1]
		if strings.HasSuffix(last.Text, " ") && strings.HasPrefix(r.Text, " ") {
			r.Text = r.Text[1:]
		}
		if last.Bold == r.Bold && last.Italic == r.Italic && last.Underline == r.Underline {
			last.Text += r.Text
			return
		}
	}
	if r.Text != "" {
		p.cur.Runs = append(p.cur.Runs, r)
	}
}

func (p *answerParser) flush() {
	runs := p.cur.Runs
	if n := len(runs); n > 0 {
		runs[0].Text = strings.TrimLeft(runs[0].Text, " ")
		runs[n-1].Text = strings.TrimRight(runs[n-1].Text, " ")
	}
	kept := runs[:0]
	for _, r := range runs {
		if r.Text != "" {
			kept = append(kept, r)
		}
	}
	if len(kept) > 0 && strings.TrimSpace(Block{Runs: kept}.Text()) != "" {
		p.blocks = append(p.blocks, Block{Runs: kept, Heading: p.cur.Heading})
	}
	p.cur = Block{}
}

// collapseSpace folds whitespace runs into one space, keeping a single
// leading or trailing space when present.
func collapseSpace(s string) string {
	if s == "" {
		return ""
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return " "
	}
	out := strings.Join(fields, " ")
	if isSpace(s[0]) {
		out = " " + out
	}
	if isSpace(s[len(s)-1]) {
		out += " "
	}
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == '\f'
}
