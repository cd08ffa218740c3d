package export

import (
	_ "embed"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

//go:embed templates.yaml
var templatesYAML []byte

// Cover styles.
const (
	CoverFOC    = "foc"
	CoverCustom = "custom"
	CoverNone   = "none"
)

// Sizes are font sizes in half-points.
type Sizes struct {
	Meta     int `yaml:"meta"`
	Title    int `yaml:"title"`
	Subtitle int `yaml:"subtitle"`
	Student  int `yaml:"student"`
	Legal    int `yaml:"legal"`
	Heading  int `yaml:"heading"`
	Question int `yaml:"question"`
	Body     int `yaml:"body"`
}

// Template is one export preset.
type Template struct {
	Name          string   `yaml:"-"`
	Cover         string   `yaml:"cover"`
	Accent        string   `yaml:"accent"`
	SubtitleColor string   `yaml:"subtitle_color"`
	Cycle         string   `yaml:"cycle"`
	DefaultTitle  string   `yaml:"default_title"`
	Legal         []string `yaml:"legal"`
	Copyright     string   `yaml:"copyright"`
	Sizes         Sizes    `yaml:"sizes"`
}

var templates map[string]Template

func init() {
	var err error
	templates, err = parseTemplates(templatesYAML)
	if err != nil {
		panic(err)
	}
}

func parseTemplates(data []byte) (map[string]Template, error) {
	var raw map[string]Template
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	out := make(map[string]Template, len(raw))
	for name, t := range raw {
		switch t.Cover {
		case CoverFOC, CoverCustom, CoverNone:
		default:
			return nil, fmt.Errorf("template %s: unknown cover %q", name, t.Cover)
		}
		if t.Sizes.Body <= 0 || t.Sizes.Heading <= 0 || t.Sizes.Question <= 0 {
			return nil, fmt.Errorf("template %s: body, heading and question sizes are required", name)
		}
		t.Name = strings.ToUpper(name)
		out[t.Name] = t
	}
	if _, ok := out["PLAIN"]; !ok {
		return nil, fmt.Errorf("templates: PLAIN preset is required")
	}
	return out, nil
}

// TemplateFor picks the preset for a document's template type. Matching is
// case-insensitive and by substring, so "foc-2024" selects FOC. Unknown
// types use PLAIN.
func TemplateFor(templateType string) Template {
	t := strings.ToUpper(templateType)
	switch {
	case strings.Contains(t, "FOC"):
		return templates["FOC"]
	case strings.Contains(t, "CUSTOM"):
		return templates["CUSTOM"]
	}
	return templates["PLAIN"]
}
