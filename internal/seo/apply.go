package seo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

const structuredDataSelector = `script[type="application/ld+json"]`

type metaTag struct {
	attr  string
	key   string
	value string
}

// Apply makes doc carry exactly one element per configured tag. Existing
// elements are updated in place; missing ones are created. Empty fields are
// left untouched. Applying the same configuration twice is a no-op.
func Apply(ctx context.Context, doc interfaces.DocumentSynchronizer, cfg Configuration) error {
	if doc == nil {
		return fmt.Errorf("seo: document is required")
	}

	if cfg.Title != "" {
		if err := doc.SetTitle(ctx, cfg.Title); err != nil {
			return fmt.Errorf("seo: set title: %w", err)
		}
	}

	canonical := cfg.Canonical
	if canonical == "" {
		canonical = doc.CurrentURL()
	}

	for _, tag := range metaTags(cfg, canonical) {
		if tag.value == "" {
			continue
		}
		if err := upsertMeta(ctx, doc, tag.attr, tag.key, tag.value); err != nil {
			return err
		}
	}

	if canonical != "" {
		el := interfaces.Element{
			Tag:   "link",
			Attrs: []interfaces.Attr{{Key: "rel", Value: "canonical"}, {Key: "href", Value: canonical}},
		}
		if err := doc.UpsertTag(ctx, `link[rel="canonical"]`, el); err != nil {
			return fmt.Errorf("seo: canonical: %w", err)
		}
	}

	if len(cfg.StructuredData) > 0 {
		payload, err := json.Marshal(cfg.StructuredData)
		if err != nil {
			return &MalformedInputError{Field: "structuredData", Err: err}
		}
		el := interfaces.Element{
			Tag:   "script",
			Attrs: []interfaces.Attr{{Key: "type", Value: "application/ld+json"}},
			Text:  string(payload),
		}
		if err := doc.UpsertTag(ctx, structuredDataSelector, el); err != nil {
			return fmt.Errorf("seo: structured data: %w", err)
		}
	}

	for _, meta := range cfg.CustomMeta {
		if meta.Validate() != nil {
			continue
		}
		attr, key := meta.attribute()
		if err := upsertMeta(ctx, doc, attr, key, meta.Content); err != nil {
			return err
		}
	}
	return nil
}

// metaTags lists the standard, Open Graph and Twitter tags in a fixed order.
// Social titles, descriptions and images fall back to their plain
// counterparts.
func metaTags(cfg Configuration, canonical string) []metaTag {
	ogTitle := firstNonEmpty(cfg.OGTitle, cfg.Title)
	ogDescription := firstNonEmpty(cfg.OGDescription, cfg.Description)
	return []metaTag{
		{"name", "description", cfg.Description},
		{"name", "keywords", cfg.Keywords},
		{"name", "robots", cfg.Robots},
		{"name", "author", cfg.Author},
		{"name", "viewport", cfg.Viewport},
		{"name", "theme-color", cfg.ThemeColor},
		{"property", "og:title", ogTitle},
		{"property", "og:description", ogDescription},
		{"property", "og:image", cfg.OGImage},
		{"property", "og:type", cfg.OGType},
		{"property", "og:url", canonical},
		{"name", "twitter:card", cfg.TwitterCard},
		{"name", "twitter:title", firstNonEmpty(cfg.TwitterTitle, ogTitle)},
		{"name", "twitter:description", firstNonEmpty(cfg.TwitterDescription, ogDescription)},
		{"name", "twitter:image", firstNonEmpty(cfg.TwitterImage, cfg.OGImage)},
	}
}

func upsertMeta(ctx context.Context, doc interfaces.DocumentSynchronizer, attr, key, content string) error {
	el := interfaces.Element{
		Tag:   "meta",
		Attrs: []interfaces.Attr{{Key: attr, Value: key}, {Key: "content", Value: content}},
	}
	if err := doc.UpsertTag(ctx, MetaSelector(attr, key), el); err != nil {
		return fmt.Errorf("seo: meta %s=%q: %w", attr, key, err)
	}
	return nil
}

// MetaSelector returns the CSS selector matching a meta tag keyed by attr.
func MetaSelector(attr, key string) string {
	return fmt.Sprintf(`meta[%s="%s"]`, attr, cssString(key))
}

// cssString escapes a value for use inside a double-quoted CSS string.
func cssString(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\a `)
		case r < 0x20:
			fmt.Fprintf(&b, `\%x `, r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
