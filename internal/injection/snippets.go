package injection

import (
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

const (
	gtagLoaderURL   = "https://www.googletagmanager.com/gtag/js"
	gtmNoscriptURL  = "https://www.googletagmanager.com/ns.html"
	gaInitTemplate  = "window.dataLayer = window.dataLayer || [];\nfunction gtag(){dataLayer.push(arguments);}\ngtag('js', new Date());\ngtag('config', %s);"
	gtmTemplate     = "(function(w,d,s,l,i){w[l]=w[l]||[];w[l].push({'gtm.start':\nnew Date().getTime(),event:'gtm.js'});var f=d.getElementsByTagName(s)[0],\nj=d.createElement(s),dl=l!='dataLayer'?'&l='+l:'';j.async=true;j.src=\n'https://www.googletagmanager.com/gtm.js?id='+i+dl;f.parentNode.insertBefore(j,f);\n})(window,document,'script','dataLayer',%s);"
	fbPixelTemplate = "!function(f,b,e,v,n,t,s)\n{if(f.fbq)return;n=f.fbq=function(){n.callMethod?\nn.callMethod.apply(n,arguments):n.queue.push(arguments)};\nif(!f._fbq)f._fbq=n;n.push=n;n.loaded=!0;n.version='2.0';\nn.queue=[];t=b.createElement(e);t.async=!0;\nt.src=v;s=b.getElementsByTagName(e)[0];\ns.parentNode.insertBefore(t,s)}(window, document,'script',\n'https://connect.facebook.net/en_US/fbevents.js');\nfbq('init', %s);\nfbq('track', 'PageView');"
)

// Snippet is one node the engine inserts.
type Snippet struct {
	Slot      string
	Element   interfaces.Element
	Placement interfaces.Placement
}

// Snippets returns the nodes cfg produces, in application order. A disabled
// configuration produces none; empty fields are skipped.
func Snippets(cfg Configuration) []Snippet {
	if !cfg.Enabled {
		return nil
	}

	var out []Snippet
	if id := strings.TrimSpace(cfg.GoogleAnalytics); id != "" {
		out = append(out,
			snippet(SlotGALoader, "script", interfaces.PlaceHead, "", "",
				interfaces.Attr{Key: "async", Value: ""},
				interfaces.Attr{Key: "src", Value: gtagLoaderURL + "?id=" + url.QueryEscape(id)},
			),
			snippet(SlotGAInit, "script", interfaces.PlaceHead, fmt.Sprintf(gaInitTemplate, jsString(id)), ""),
		)
	}
	if id := strings.TrimSpace(cfg.GoogleTagManager); id != "" {
		iframe := fmt.Sprintf(`<iframe src="%s" height="0" width="0" style="display:none;visibility:hidden"></iframe>`,
			html.EscapeString(gtmNoscriptURL+"?id="+url.QueryEscape(id)))
		out = append(out,
			snippet(SlotGTM, "script", interfaces.PlaceHead, fmt.Sprintf(gtmTemplate, jsString(id)), ""),
			snippet(SlotGTMNoscript, "noscript", interfaces.PlaceBodyStart, "", iframe),
		)
	}
	if id := strings.TrimSpace(cfg.FacebookPixel); id != "" {
		out = append(out, snippet(SlotFBPixel, "script", interfaces.PlaceHead, fmt.Sprintf(fbPixelTemplate, jsString(id)), ""))
	}
	if present(string(cfg.CustomCSS)) {
		out = append(out, snippet(SlotCustomCSS, "style", interfaces.PlaceHead, string(cfg.CustomCSS), ""))
	}
	if present(string(cfg.CustomJS)) {
		out = append(out, snippet(SlotCustomJS, "script", interfaces.PlaceHead, string(cfg.CustomJS), ""))
	}
	if present(string(cfg.HeaderCode)) {
		out = append(out, snippet(SlotHeader, "div", interfaces.PlaceHead, "", string(cfg.HeaderCode)))
	}
	if present(string(cfg.FooterCode)) {
		out = append(out, snippet(SlotFooter, "div", interfaces.PlaceBody, "", string(cfg.FooterCode)))
	}
	return out
}

// present reports whether a code field holds more than whitespace.
func present(code string) bool {
	return strings.TrimSpace(code) != ""
}

func snippet(slot, tag string, placement interfaces.Placement, text, inner string, attrs ...interfaces.Attr) Snippet {
	all := make([]interfaces.Attr, 0, len(attrs)+1)
	all = append(all, interfaces.Attr{Key: MarkerAttribute, Value: slot})
	all = append(all, attrs...)
	return Snippet{
		Slot: slot,
		Element: interfaces.Element{
			Tag:       tag,
			Attrs:     all,
			Text:      text,
			InnerHTML: inner,
		},
		Placement: placement,
	}
}

// jsString quotes value as a JavaScript string literal. json.Marshal escapes
// <, > and & so the literal cannot close the surrounding script element.
func jsString(value string) string {
	encoded, err := json.Marshal(value)
	if err != nil {
		return `""`
	}
	return string(encoded)
}
