// Package document implements interfaces.DocumentSynchronizer over parsed
// HTML, so pages can be synchronized on the server before they are sent.
package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/tapdev/tapdev-site/pkg/interfaces"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	// ErrTagRequired is returned for elements without a tag name.
	ErrTagRequired = errors.New("document: element tag is required")
	// ErrSelectorRequired is returned by UpsertTag without a selector.
	ErrSelectorRequired = errors.New("document: selector is required")
	// ErrMarkerRequired is returned by RemoveAllTagged without a marker.
	ErrMarkerRequired = errors.New("document: marker attribute is required")
)

// HTMLDocument is a parsed HTML page. It always has a head and a body.
type HTMLDocument struct {
	mu  sync.Mutex
	doc *goquery.Document
	url string
}

var _ interfaces.DocumentSynchronizer = (*HTMLDocument)(nil)

// Parse reads an HTML page. url is reported by CurrentURL and used as the
// canonical fallback.
func Parse(r io.Reader, url string) (*HTMLDocument, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("document: parse: %w", err)
	}
	return &HTMLDocument{doc: goquery.NewDocumentFromNode(root), url: url}, nil
}

// ParseString is Parse for an in-memory page.
func ParseString(src, url string) (*HTMLDocument, error) {
	return Parse(strings.NewReader(src), url)
}

func (d *HTMLDocument) CurrentURL() string {
	return d.url
}

func (d *HTMLDocument) SetTitle(ctx context.Context, title string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	titles := d.head().Find("title")
	if titles.Length() == 0 {
		node := newElement("title", nil)
		node.AppendChild(&html.Node{Type: html.TextNode, Data: title})
		d.head().AppendNodes(node)
		return nil
	}
	titles.First().SetText(title)
	titles.Slice(1, goquery.ToEnd).Remove()
	return nil
}

func (d *HTMLDocument) UpsertTag(ctx context.Context, selector string, el interfaces.Element) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(selector) == "" {
		return ErrSelectorRequired
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	head := d.head()
	matches := head.Find(selector)
	if matches.Length() == 0 {
		node, err := buildNode(el)
		if err != nil {
			return err
		}
		head.AppendNodes(node)
		return nil
	}

	target := matches.Get(0)
	if err := replaceNode(target, el); err != nil {
		return err
	}
	matches.Slice(1, goquery.ToEnd).Remove()
	return nil
}

func (d *HTMLDocument) Insert(ctx context.Context, el interfaces.Element, placement interfaces.Placement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	node, err := buildNode(el)
	if err != nil {
		return err
	}
	switch placement {
	case interfaces.PlaceBody:
		d.body().AppendNodes(node)
	case interfaces.PlaceBodyStart:
		d.body().PrependNodes(node)
	default:
		d.head().AppendNodes(node)
	}
	return nil
}

func (d *HTMLDocument) RemoveAllTagged(ctx context.Context, marker string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if strings.TrimSpace(marker) == "" {
		return 0, ErrMarkerRequired
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	tagged := d.doc.Find("[" + marker + "]")
	count := tagged.Length()
	tagged.Remove()
	return count, nil
}

// Tagged returns the outer HTML of every element carrying marker, in
// document order.
func (d *HTMLDocument) Tagged(marker string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []string
	var outerErr error
	d.doc.Find("[" + marker + "]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		markup, err := goquery.OuterHtml(s)
		if err != nil {
			outerErr = err
			return false
		}
		out = append(out, markup)
		return true
	})
	return out, outerErr
}

// Find runs selector against the whole document. The returned selection
// must not be mutated.
func (d *HTMLDocument) Find(selector string) *goquery.Selection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Find(selector)
}

// HeadHTML renders the <head> element.
func (d *HTMLDocument) HeadHTML() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return goquery.OuterHtml(d.head())
}

// Render writes the full page, doctype included.
func (d *HTMLDocument) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, root := range d.doc.Nodes {
		if err := html.Render(w, root); err != nil {
			return fmt.Errorf("document: render: %w", err)
		}
	}
	return nil
}

func (d *HTMLDocument) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func (d *HTMLDocument) head() *goquery.Selection {
	return d.doc.Find("head").First()
}

func (d *HTMLDocument) body() *goquery.Selection {
	return d.doc.Find("body").First()
}

func newElement(tag string, attrs []interfaces.Attr) *html.Node {
	node := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	node.Attr = toAttributes(attrs)
	return node
}

func toAttributes(attrs []interfaces.Attr) []html.Attribute {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]html.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, html.Attribute{Key: attr.Key, Val: attr.Value})
	}
	return out
}

func buildNode(el interfaces.Element) (*html.Node, error) {
	tag := strings.ToLower(strings.TrimSpace(el.Tag))
	if tag == "" {
		return nil, ErrTagRequired
	}
	node := newElement(tag, el.Attrs)
	if err := fillChildren(node, el); err != nil {
		return nil, err
	}
	return node, nil
}

// replaceNode rewrites target in place so its position in head is kept.
func replaceNode(target *html.Node, el interfaces.Element) error {
	tag := strings.ToLower(strings.TrimSpace(el.Tag))
	if tag == "" {
		return ErrTagRequired
	}
	target.Data = tag
	target.DataAtom = atom.Lookup([]byte(tag))
	target.Attr = toAttributes(el.Attrs)
	for child := target.FirstChild; child != nil; {
		next := child.NextSibling
		target.RemoveChild(child)
		child = next
	}
	return fillChildren(target, el)
}

func fillChildren(node *html.Node, el interfaces.Element) error {
	if el.InnerHTML != "" {
		children, err := html.ParseFragment(strings.NewReader(el.InnerHTML), node)
		if err != nil {
			return fmt.Errorf("document: parse inner html for <%s>: %w", node.Data, err)
		}
		for _, child := range children {
			node.AppendChild(child)
		}
		return nil
	}
	if el.Text != "" {
		node.AppendChild(&html.Node{Type: html.TextNode, Data: el.Text})
	}
	return nil
}
