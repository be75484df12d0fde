package injection_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/tapdev/tapdev-site/internal/document"
	"github.com/tapdev/tapdev-site/internal/injection"
	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

const page = `<!DOCTYPE html><html><head><title>TapDev</title></head><body><main>hello</main></body></html>`

func newDoc(t *testing.T) *document.HTMLDocument {
	t.Helper()
	doc, err := document.ParseString(page, "https://tapdev.com/")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func marked(doc *document.HTMLDocument) *goquery.Selection {
	return doc.Find("[" + injection.MarkerAttribute + "]")
}

func slots(doc *document.HTMLDocument) []string {
	var out []string
	marked(doc).Each(func(_ int, s *goquery.Selection) {
		slot, _ := s.Attr(injection.MarkerAttribute)
		out = append(out, slot)
	})
	return out
}

func fullConfig() injection.Configuration {
	return injection.Configuration{
		Enabled:          true,
		HeaderCode:       `<link rel="preconnect" href="https://fonts.gstatic.com">`,
		FooterCode:       `<p class="legal">footer</p>`,
		GoogleAnalytics:  "G-123",
		GoogleTagManager: "GTM-ABC",
		FacebookPixel:    "987",
		CustomCSS:        ".a{color:red}",
		CustomJS:         "console.log('hi')",
	}
}

func TestReapplyAnalyticsAndCSS(t *testing.T) {
	ctx := context.Background()
	doc := newDoc(t)
	engine := injection.NewEngine(doc)

	cfg := injection.Configuration{Enabled: true, GoogleAnalytics: "G-123", CustomCSS: ".a{color:red}"}
	if err := engine.Reapply(ctx, cfg); err != nil {
		t.Fatalf("reapply: %v", err)
	}
	if got := marked(doc).Length(); got != 3 {
		t.Fatalf("expected 3 marked nodes, got %d", got)
	}
	if engine.State() != injection.StateApplied {
		t.Fatalf("expected applied state, got %s", engine.State())
	}
	src, _ := doc.Find(`script[data-code-injection="ga-loader"]`).Attr("src")
	if src != "https://www.googletagmanager.com/gtag/js?id=G-123" {
		t.Fatalf("unexpected loader src %q", src)
	}

	cfg.Enabled = false
	if err := engine.Reapply(ctx, cfg); err != nil {
		t.Fatalf("reapply disabled: %v", err)
	}
	if got := marked(doc).Length(); got != 0 {
		t.Fatalf("expected 0 marked nodes, got %d", got)
	}
	if engine.State() != injection.StateClean {
		t.Fatalf("expected clean state, got %s", engine.State())
	}
}

func TestReapplyOrderAndPlacement(t *testing.T) {
	ctx := context.Background()
	doc := newDoc(t)
	engine := injection.NewEngine(doc)
	if err := engine.Reapply(ctx, fullConfig()); err != nil {
		t.Fatalf("reapply: %v", err)
	}

	want := []string{
		injection.SlotGALoader,
		injection.SlotGAInit,
		injection.SlotGTM,
		injection.SlotFBPixel,
		injection.SlotCustomCSS,
		injection.SlotCustomJS,
		injection.SlotHeader,
	}
	var head []string
	doc.Find("head [" + injection.MarkerAttribute + "]").Each(func(_ int, s *goquery.Selection) {
		if s.Parent().Is("head") {
			slot, _ := s.Attr(injection.MarkerAttribute)
			head = append(head, slot)
		}
	})
	if diff := cmp.Diff(want, head); diff != "" {
		t.Fatalf("head order mismatch (-want +got):\n%s", diff)
	}

	first := doc.Find("body").Children().First()
	if slot, _ := first.Attr(injection.MarkerAttribute); slot != injection.SlotGTMNoscript {
		t.Fatalf("expected gtm noscript first in body, got %q", slot)
	}
	last := doc.Find("body").Children().Last()
	if slot, _ := last.Attr(injection.MarkerAttribute); slot != injection.SlotFooter {
		t.Fatalf("expected footer last in body, got %q", slot)
	}
	if !strings.Contains(doc.String(), "ns.html?id=GTM-ABC") {
		t.Fatalf("noscript iframe missing")
	}
}

func TestReapplyNeverDuplicates(t *testing.T) {
	ctx := context.Background()
	doc := newDoc(t)
	engine := injection.NewEngine(doc)
	for range 3 {
		if err := engine.Reapply(ctx, fullConfig()); err != nil {
			t.Fatalf("reapply: %v", err)
		}
	}
	if got := marked(doc).Length(); got != len(injection.Snippets(fullConfig())) {
		t.Fatalf("expected %d marked nodes, got %d", len(injection.Snippets(fullConfig())), got)
	}
	if diff := cmp.Diff(fullConfig(), engine.Applied()); diff != "" {
		t.Fatalf("applied mismatch (-want +got):\n%s", diff)
	}
}

func TestTeardownRemovesForeignMarkedNodes(t *testing.T) {
	ctx := context.Background()
	doc, err := document.ParseString(`<html><head><script data-code-injection="custom-js">stale()</script></head><body><div data-code-injection="footer">old</div><main>keep</main></body></html>`, "")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	engine := injection.NewEngine(doc)
	for range 2 {
		if err := engine.Teardown(ctx); err != nil {
			t.Fatalf("teardown: %v", err)
		}
	}
	if got := marked(doc).Length(); got != 0 {
		t.Fatalf("expected no marked nodes, got %d", got)
	}
	if doc.Find("main").Text() != "keep" {
		t.Fatalf("teardown removed unmarked content")
	}
}

func TestReapplyReplacesChangedFields(t *testing.T) {
	ctx := context.Background()
	doc := newDoc(t)
	engine := injection.NewEngine(doc)
	if err := engine.Reapply(ctx, fullConfig()); err != nil {
		t.Fatalf("reapply: %v", err)
	}
	next := injection.Configuration{Enabled: true, CustomJS: "run()"}
	if err := engine.Reapply(ctx, next); err != nil {
		t.Fatalf("reapply: %v", err)
	}
	if diff := cmp.Diff([]string{injection.SlotCustomJS}, slots(doc)); diff != "" {
		t.Fatalf("slots mismatch (-want +got):\n%s", diff)
	}
}

func TestSnippetsEscapeTrackingIDs(t *testing.T) {
	cfg := injection.Configuration{Enabled: true, GoogleAnalytics: `G-1</script><script>x()`}
	snippets := injection.Snippets(cfg)
	if len(snippets) != 2 {
		t.Fatalf("expected 2 snippets, got %d", len(snippets))
	}
	if strings.Contains(snippets[1].Element.Text, "</script>") {
		t.Fatalf("tracking id not escaped: %s", snippets[1].Element.Text)
	}
	src, _ := snippets[0].Element.Attr("src")
	if strings.Contains(src, "<") {
		t.Fatalf("loader url not escaped: %s", src)
	}
}

func TestSnippetsDisabledOrEmpty(t *testing.T) {
	if got := injection.Snippets(injection.Configuration{}); len(got) != 0 {
		t.Fatalf("expected no snippets for zero config, got %d", len(got))
	}
	disabled := fullConfig()
	disabled.Enabled = false
	if got := injection.Snippets(disabled); len(got) != 0 {
		t.Fatalf("expected no snippets when disabled, got %d", len(got))
	}
	blank := injection.Configuration{
		Enabled:         true,
		GoogleAnalytics: "  ",
		CustomCSS:       " \n",
		CustomJS:        "\t",
		HeaderCode:      "   ",
		FooterCode:      "\n\n",
	}
	if got := injection.Snippets(blank); len(got) != 0 {
		t.Fatalf("expected no snippets for whitespace-only fields, got %d", len(got))
	}
}

func TestReapplyCleansUpOnInsertFailure(t *testing.T) {
	doc := &failingDoc{HTMLDocument: newDoc(t), failAfter: 2}
	engine := injection.NewEngine(doc)
	if err := engine.Reapply(context.Background(), fullConfig()); err == nil {
		t.Fatalf("expected insert failure")
	}
	if got := marked(doc.HTMLDocument).Length(); got != 0 {
		t.Fatalf("expected orphans to be removed, got %d", got)
	}
	if engine.State() != injection.StateClean {
		t.Fatalf("expected clean state after failure")
	}
}

type failingDoc struct {
	*document.HTMLDocument
	failAfter int
	inserts   int
}

func (d *failingDoc) Insert(ctx context.Context, el interfaces.Element, placement interfaces.Placement) error {
	d.inserts++
	if d.inserts > d.failAfter {
		return errors.New("page closed")
	}
	return d.HTMLDocument.Insert(ctx, el, placement)
}
