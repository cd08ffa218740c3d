package answer

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in model output is dropped by the renderer.
var md = goldmark.New(
	goldmark.WithExtensions(extension.Strikethrough, extension.Table),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

var fenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\n(.*?)\n?```$")

// GeneralKnowledgePrefix opens answers the model wrote without support from
// the uploaded material.
const GeneralKnowledgePrefix = "Basándome en conocimiento general:"

// Normalize turns a model answer into the editor's HTML. A response wrapped
// entirely in a code fence is unwrapped first; markdown that slipped through
// the formatting rules becomes the equivalent HTML and line breaks are kept.
func Normalize(answer string) (string, error) {
	answer = strings.TrimSpace(answer)
	if m := fenceRe.FindStringSubmatch(answer); m != nil {
		answer = strings.TrimSpace(m[1])
	}
	if answer == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(answer), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// FromGeneralKnowledge reports whether the answer declares that it is not
// based on the provided material.
func FromGeneralKnowledge(answer string) bool {
	return strings.HasPrefix(strings.TrimSpace(answer), GeneralKnowledgePrefix)
}
