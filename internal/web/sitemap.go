package web

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/tapdev/tapdev-site/internal/routes"
)

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// handleSitemap lists every registered route and published post.
func (s *Site) handleSitemap(w http.ResponseWriter, r *http.Request) {
	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, path := range routes.Paths() {
		set.URLs = append(set.URLs, sitemapURL{Loc: s.sitemapLoc(path)})
	}
	posts, err := s.collections.PublishedPosts(r.Context(), 0)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	for _, post := range posts {
		entry := sitemapURL{Loc: s.sitemapLoc("/blog/" + post.Slug)}
		if !post.UpdatedAt.IsZero() {
			entry.LastMod = post.UpdatedAt.UTC().Format("2006-01-02")
		}
		set.URLs = append(set.URLs, entry)
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		s.logger.WithContext(r.Context()).Warn("web.sitemap.encode_failed", "error", err)
	}
}

func (s *Site) handleRobots(w http.ResponseWriter, _ *http.Request) {
	var b strings.Builder
	b.WriteString("User-agent: *\nAllow: /\nDisallow: /admin/\n")
	fmt.Fprintf(&b, "Sitemap: %s\n", s.sitemapLoc("/sitemap.xml"))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

func (s *Site) sitemapLoc(path string) string {
	if loc := s.absoluteURL(path); loc != "" {
		return loc
	}
	return path
}
