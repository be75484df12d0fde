package document_test

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/tapdev/tapdev-site/internal/document"
	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

const page = `<!DOCTYPE html>
<html><head><title>Old</title><meta name="description" content="old"><meta name="description" content="dup"></head>
<body><main>content</main></body></html>`

func mustParse(t *testing.T, src string) *document.HTMLDocument {
	t.Helper()
	doc, err := document.ParseString(src, "https://tapdev.com/contact")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestParseAddsHeadAndBody(t *testing.T) {
	doc := mustParse(t, "<p>fragment</p>")
	if got := doc.Find("head").Length(); got != 1 {
		t.Fatalf("expected a head element, got %d", got)
	}
	if got := doc.Find("body p").Length(); got != 1 {
		t.Fatalf("expected fragment in body, got %d", got)
	}
	if doc.CurrentURL() != "https://tapdev.com/contact" {
		t.Fatalf("unexpected url %q", doc.CurrentURL())
	}
}

func TestSetTitleReplacesAndCreates(t *testing.T) {
	ctx := context.Background()
	doc := mustParse(t, page)
	if err := doc.SetTitle(ctx, "Contact TapDev"); err != nil {
		t.Fatalf("set title: %v", err)
	}
	if got := doc.Find("title").Text(); got != "Contact TapDev" {
		t.Fatalf("unexpected title %q", got)
	}

	empty := mustParse(t, "<html><head></head><body></body></html>")
	if err := empty.SetTitle(ctx, "Fresh"); err != nil {
		t.Fatalf("set title: %v", err)
	}
	if got := empty.Find("head > title").Length(); got != 1 {
		t.Fatalf("expected one title, got %d", got)
	}
}

func TestUpsertTagUpdatesFirstAndRemovesDuplicates(t *testing.T) {
	ctx := context.Background()
	doc := mustParse(t, page)
	el := interfaces.Element{
		Tag:   "meta",
		Attrs: []interfaces.Attr{{Key: "name", Value: "description"}, {Key: "content", Value: "new"}},
	}
	for range 2 {
		if err := doc.UpsertTag(ctx, `meta[name="description"]`, el); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	matches := doc.Find(`meta[name="description"]`)
	if matches.Length() != 1 {
		t.Fatalf("expected one description, got %d", matches.Length())
	}
	if content, _ := matches.Attr("content"); content != "new" {
		t.Fatalf("unexpected content %q", content)
	}

	robots := interfaces.Element{
		Tag:   "meta",
		Attrs: []interfaces.Attr{{Key: "name", Value: "robots"}, {Key: "content", Value: "noindex"}},
	}
	if err := doc.UpsertTag(ctx, `meta[name="robots"]`, robots); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if got := doc.Find(`head > meta[name="robots"]`).Length(); got != 1 {
		t.Fatalf("expected robots appended to head, got %d", got)
	}
}

func TestUpsertTagRequiresSelector(t *testing.T) {
	doc := mustParse(t, page)
	if err := doc.UpsertTag(context.Background(), " ", interfaces.Element{Tag: "meta"}); err != document.ErrSelectorRequired {
		t.Fatalf("expected ErrSelectorRequired, got %v", err)
	}
}

func TestInsertPlacements(t *testing.T) {
	ctx := context.Background()
	doc := mustParse(t, page)
	marker := interfaces.Attr{Key: "data-test", Value: "x"}

	if err := doc.Insert(ctx, interfaces.Element{Tag: "style", Attrs: []interfaces.Attr{marker}, Text: "body{color:red}"}, interfaces.PlaceHead); err != nil {
		t.Fatalf("insert head: %v", err)
	}
	if err := doc.Insert(ctx, interfaces.Element{Tag: "noscript", Attrs: []interfaces.Attr{marker}, InnerHTML: `<iframe src="https://example.com"></iframe>`}, interfaces.PlaceBodyStart); err != nil {
		t.Fatalf("insert body start: %v", err)
	}
	if err := doc.Insert(ctx, interfaces.Element{Tag: "div", Attrs: []interfaces.Attr{marker}, InnerHTML: "<p>footer</p>"}, interfaces.PlaceBody); err != nil {
		t.Fatalf("insert body: %v", err)
	}

	if got := doc.Find("head > style[data-test]").Length(); got != 1 {
		t.Fatalf("expected style in head, got %d", got)
	}
	if first := doc.Find("body").Children().First(); goquery.NodeName(first) != "noscript" {
		t.Fatalf("expected noscript first in body, got %s", goquery.NodeName(first))
	}
	if last := doc.Find("body").Children().Last(); last.Find("p").Text() != "footer" {
		t.Fatalf("expected footer div last in body")
	}

	out := doc.String()
	if !strings.Contains(out, `<iframe src="https://example.com"></iframe>`) {
		t.Fatalf("noscript body not rendered raw: %s", out)
	}
	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Fatalf("expected doctype in output: %s", out)
	}
}

func TestRemoveAllTagged(t *testing.T) {
	ctx := context.Background()
	doc := mustParse(t, page)
	marker := interfaces.Attr{Key: "data-code-injection", Value: "custom-js"}
	for _, placement := range []interfaces.Placement{interfaces.PlaceHead, interfaces.PlaceBody} {
		if err := doc.Insert(ctx, interfaces.Element{Tag: "script", Attrs: []interfaces.Attr{marker}, Text: "1"}, placement); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	tagged, err := doc.Tagged("data-code-injection")
	if err != nil || len(tagged) != 2 {
		t.Fatalf("expected 2 tagged nodes, got %d (%v)", len(tagged), err)
	}

	removed, err := doc.RemoveAllTagged(ctx, "data-code-injection")
	if err != nil || removed != 2 {
		t.Fatalf("expected 2 removed, got %d (%v)", removed, err)
	}
	removed, err = doc.RemoveAllTagged(ctx, "data-code-injection")
	if err != nil || removed != 0 {
		t.Fatalf("expected idempotent removal, got %d (%v)", removed, err)
	}
	if got := doc.Find("main").Length(); got != 1 {
		t.Fatalf("untagged content removed")
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doc := mustParse(t, page)
	if err := doc.SetTitle(ctx, "x"); err == nil {
		t.Fatalf("expected context error")
	}
}
