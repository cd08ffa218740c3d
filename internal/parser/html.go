package parser

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. Every block element becomes one line and
// items of <ol> lists are numbered.
type HTMLParser struct{}

func (p *HTMLParser) Extract(ctx context.Context, r io.Reader, filename string) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var w lineWriter
	var walk func(n *html.Node, prefix string)
	walk = func(n *html.Node, prefix string) {
		if n.Type == html.TextNode {
			w.line(prefix + strings.Join(strings.Fields(n.Data), " "))
			return
		}
		if n.Type == html.ElementNode {
			switch {
			case skipTags[n.Data]:
				return
			case n.Data == "ol" || n.Data == "ul":
				num := 1
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type != html.ElementNode || c.Data != "li" {
						continue
					}
					marker := "- "
					if n.Data == "ol" {
						marker = fmt.Sprintf("%d. ", num)
						num++
					}
					walk(c, marker)
				}
				return
			case lineTags[n.Data] && !hasBlockChild(n):
				for _, l := range strings.Split(textContent(n), "\n") {
					w.line(prefix + l)
					prefix = ""
				}
				return
			case lineTags[n.Data]:
				// mixed content: loose text and inline runs become their own lines
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if isBlank(c) || (c.Type == html.ElementNode && skipTags[c.Data]) {
						continue
					}
					if c.Type == html.ElementNode && !blockTags[c.Data] && !lineTags[c.Data] {
						w.line(prefix + textContent(c))
					} else {
						walk(c, prefix)
					}
					prefix = ""
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if isBlank(c) {
				continue
			}
			walk(c, prefix)
			prefix = ""
		}
	}

	if body := findBody(doc); body != nil {
		walk(body, "")
	} else {
		walk(doc, "")
	}
	return w.String(), nil
}

var skipTags = map[string]bool{
	"script": true, "style": true, "nav": true, "footer": true, "head": true, "noscript": true, "template": true,
}

// lineTags are elements whose text forms one or more lines.
var lineTags = map[string]bool{
	"body": true, "div": true, "section": true, "article": true, "main": true,
	"p": true, "li": true, "td": true, "th": true, "dt": true, "dd": true, "caption": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true,
}

// blockTags start a new line when nested in a lineTags element.
var blockTags = map[string]bool{
	"ol": true, "ul": true, "table": true, "dl": true, "hr": true, "form": true,
}

func isBlank(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return strings.TrimSpace(n.Data) == ""
	case html.CommentNode, html.DoctypeNode:
		return true
	}
	return false
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (blockTags[c.Data] || lineTags[c.Data]) {
			return true
		}
	}
	return false
}

// textContent collects the text below n, skipping scripts and styles. <br>
// becomes \n and runs of whitespace collapse to one space.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		switch {
		case n.Type == html.ElementNode && skipTags[n.Data]:
			return
		case n.Type == html.TextNode:
			buf.WriteString(strings.ReplaceAll(n.Data, "\n", " "))
		case n.Type == html.ElementNode && n.Data == "br":
			buf.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)

	lines := strings.Split(buf.String(), "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
