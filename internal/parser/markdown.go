package parser

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Heading markers are
// dropped and ordered list items keep their number so "1. ..." headers
// survive.
type MarkdownParser struct{}

func (p *MarkdownParser) Extract(ctx context.Context, r io.Reader, filename string) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var w lineWriter
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		writeMarkdownBlock(&w, n, src, "")
	}
	return w.String(), nil
}

func writeMarkdownBlock(w *lineWriter, n ast.Node, src []byte, prefix string) {
	switch node := n.(type) {
	case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
		lines := strings.Split(inlineText(node, src), "\n")
		for i, l := range lines {
			if i == 0 {
				l = prefix + l
			}
			w.line(l)
		}

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		segs := node.Lines()
		for i := 0; i < segs.Len(); i++ {
			seg := segs.At(i)
			w.line(string(seg.Value(src)))
		}

	case *ast.List:
		i := 0
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			marker := "- "
			if node.IsOrdered() {
				marker = fmt.Sprintf("%d%c ", node.Start+i, node.Marker)
			}
			first := true
			for c := item.FirstChild(); c != nil; c = c.NextSibling() {
				if first {
					writeMarkdownBlock(w, c, src, marker)
					first = false
					continue
				}
				writeMarkdownBlock(w, c, src, "")
			}
			i++
		}

	case *ast.ThematicBreak, *ast.HTMLBlock:
		// no text

	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			writeMarkdownBlock(w, c, src, prefix)
			prefix = ""
		}
	}
}

// inlineText concatenates the text of inline children; soft and hard line
// breaks become \n.
func inlineText(n ast.Node, src []byte) string {
	var buf strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				buf.Write(t.Segment.Value(src))
				if t.HardLineBreak() || t.SoftLineBreak() {
					buf.WriteByte('\n')
				}
			case *ast.String:
				buf.Write(t.Value)
			case *ast.AutoLink:
				buf.Write(t.Label(src))
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}
