package markdown

import (
	"bytes"
	"fmt"
	"time"

	"github.com/adrg/frontmatter"
)

// FrontMatter is the metadata block of a seed document. Keys without a
// dedicated field end up in Custom.
type FrontMatter struct {
	Title     string         `yaml:"title"`
	Slug      string         `yaml:"slug"`
	Summary   string         `yaml:"summary"`
	Author    string         `yaml:"author"`
	Image     string         `yaml:"image"`
	Tags      []string       `yaml:"tags"`
	Date      time.Time      `yaml:"date"`
	Published bool           `yaml:"published"`
	Order     int            `yaml:"order"`
	Custom    map[string]any `yaml:",inline"`
}

// Document is a parsed source file.
type Document struct {
	Path        string
	FrontMatter FrontMatter
	Body        []byte
}

// ParseFrontMatter splits source into metadata and the Markdown body.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var meta FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if meta.Custom == nil {
		meta.Custom = map[string]any{}
	}
	return meta, body, nil
}

// Strings returns a list-valued custom key as strings. Non-string items are
// skipped.
func (f FrontMatter) Strings(key string) []string {
	raw, ok := f.Custom[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if value, ok := item.(string); ok {
			out = append(out, value)
		}
	}
	return out
}

// String returns a string-valued custom key.
func (f FrontMatter) String(key string) string {
	value, _ := f.Custom[key].(string)
	return value
}
