package parser

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// TextParser handles plain text files.
type TextParser struct{}

func (p *TextParser) Extract(ctx context.Context, r io.Reader, filename string) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var buf strings.Builder
	for scanner.Scan() {
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(strings.TrimRight(scanner.Text(), " \t\r"))
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
