package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

var (
	ErrSelectorRequired = errors.New("browser: selector is required")
	ErrMarkerRequired   = errors.New("browser: marker attribute is required")
	ErrTagRequired      = errors.New("browser: element tag is required")
)

// Page is a live tab. It implements interfaces.DocumentSynchronizer.
type Page struct {
	page *rod.Page
	url  string
}

var _ interfaces.DocumentSynchronizer = (*Page)(nil)

// buildElementJS is shared by the mutation scripts.
const buildElementJS = `
	const build = (el) => {
		const node = document.createElement(el.tag);
		for (const [key, value] of el.attrs) node.setAttribute(key, value);
		if (el.html) node.innerHTML = el.html;
		else if (el.text) node.textContent = el.text;
		return node;
	};
`

const setTitleJS = `(title) => { document.title = title; }`

const upsertTagJS = `(selector, el) => {` + buildElementJS + `
	const matches = Array.from(document.head.querySelectorAll(selector));
	const node = build(el);
	if (matches.length === 0) {
		document.head.appendChild(node);
		return;
	}
	matches[0].replaceWith(node);
	for (const extra of matches.slice(1)) extra.remove();
}`

const insertJS = `(el, placement) => {` + buildElementJS + `
	const node = build(el);
	if (placement === "body") document.body.appendChild(node);
	else if (placement === "body-start") document.body.insertBefore(node, document.body.firstChild);
	else document.head.appendChild(node);
}`

const removeTaggedJS = `(marker) => {
	const nodes = document.querySelectorAll("[" + marker + "]");
	nodes.forEach((node) => node.remove());
	return nodes.length;
}`

const headHTMLJS = `() => document.head.outerHTML`

func (p *Page) SetTitle(ctx context.Context, title string) error {
	_, err := p.eval(ctx, setTitleJS, title)
	return err
}

func (p *Page) UpsertTag(ctx context.Context, selector string, el interfaces.Element) error {
	if strings.TrimSpace(selector) == "" {
		return ErrSelectorRequired
	}
	arg, err := elementArg(el)
	if err != nil {
		return err
	}
	_, err = p.eval(ctx, upsertTagJS, selector, arg)
	return err
}

func (p *Page) Insert(ctx context.Context, el interfaces.Element, placement interfaces.Placement) error {
	arg, err := elementArg(el)
	if err != nil {
		return err
	}
	_, err = p.eval(ctx, insertJS, arg, placement.String())
	return err
}

func (p *Page) RemoveAllTagged(ctx context.Context, marker string) (int, error) {
	if strings.TrimSpace(marker) == "" {
		return 0, ErrMarkerRequired
	}
	res, err := p.eval(ctx, removeTaggedJS, marker)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

// CurrentURL reports the live location, falling back to the url the page
// was opened with.
func (p *Page) CurrentURL() string {
	info, err := p.page.Info()
	if err != nil || info.URL == "" {
		return p.url
	}
	return info.URL
}

// HeadHTML returns the live <head> markup.
func (p *Page) HeadHTML(ctx context.Context) (string, error) {
	res, err := p.eval(ctx, headHTMLJS)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

// Close closes the tab.
func (p *Page) Close() error {
	return p.page.Close()
}

func (p *Page) eval(ctx context.Context, js string, args ...any) (*proto.RuntimeRemoteObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := p.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           js,
		JSArgs:       args,
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return nil, fmt.Errorf("browser: evaluate: %w", err)
	}
	return res, nil
}

func elementArg(el interfaces.Element) (map[string]any, error) {
	if strings.TrimSpace(el.Tag) == "" {
		return nil, ErrTagRequired
	}
	attrs := make([][2]string, 0, len(el.Attrs))
	for _, attr := range el.Attrs {
		attrs = append(attrs, [2]string{attr.Key, attr.Value})
	}
	return map[string]any{
		"tag":   strings.ToLower(el.Tag),
		"attrs": attrs,
		"text":  el.Text,
		"html":  el.InnerHTML,
	}, nil
}

const countTaggedJS = `(marker) => document.querySelectorAll("[" + marker + "]").length`

// CountTagged reports how many elements carry marker.
func (p *Page) CountTagged(ctx context.Context, marker string) (int, error) {
	if strings.TrimSpace(marker) == "" {
		return 0, ErrMarkerRequired
	}
	res, err := p.eval(ctx, countTaggedJS, marker)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}
