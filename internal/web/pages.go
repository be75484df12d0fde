package web

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/tapdev/tapdev-site/internal/collections"
	"github.com/tapdev/tapdev-site/internal/routes"
	"github.com/tapdev/tapdev-site/internal/runtimeconfig"
	"github.com/tapdev/tapdev-site/internal/seo"
)

// pageData is the template context shared by every page.
type pageData struct {
	Site    runtimeconfig.SiteConfig
	Path    string
	Nav     []routes.Route
	Year    int
	Heading string

	Sections map[string]*collections.HomepageContent
	Services []*collections.ServicePage
	Service  *collections.RenderedService
	Projects []*collections.PortfolioProject
	Posts    []*collections.BlogPost
	Post     *collections.RenderedPost

	Flash  string
	Errors map[string]string
	Form   collections.ContactSubmission
}

type page struct {
	template string
	status   int
	data     pageData
	// meta carries metadata derived from the page content.
	meta *seo.Configuration
}

var navPaths = []string{"/", "/services", "/portfolio", "/blog", "/about", "/contact"}

func navigation() []routes.Route {
	nav := make([]routes.Route, 0, len(navPaths))
	for _, path := range navPaths {
		if route, ok := routes.Lookup(path); ok {
			nav = append(nav, route)
		}
	}
	return nav
}

func notFoundPage() page {
	return page{
		template: "notfound",
		status:   http.StatusNotFound,
		meta:     &seo.Configuration{Title: "Page Not Found | TapDev", Robots: "noindex, follow"},
	}
}

// resolve maps path to the page that renders it.
func (s *Site) resolve(ctx context.Context, path string, query url.Values) (page, error) {
	switch {
	case path == "/":
		return s.homePage(ctx)
	case path == "/services":
		services, err := s.collections.Services(ctx)
		if err != nil {
			return page{}, err
		}
		return page{template: "services", data: pageData{Services: services}}, nil
	case path == "/portfolio":
		projects, err := s.collections.Projects(ctx)
		if err != nil {
			return page{}, err
		}
		return page{template: "portfolio", data: pageData{Projects: projects}}, nil
	case path == "/blog":
		posts, err := s.collections.PublishedPosts(ctx, 0)
		if err != nil {
			return page{}, err
		}
		return page{template: "blog", data: pageData{Posts: posts}}, nil
	case path == "/contact":
		return s.contactPage(ctx, query)
	case strings.HasPrefix(path, "/blog/"):
		return s.postPage(ctx, strings.TrimPrefix(path, "/blog/"))
	}
	if slug, ok := routes.ServiceSlug(path); ok {
		return s.servicePage(ctx, path, slug)
	}
	if route, ok := routes.Lookup(path); ok {
		return page{template: "page", data: pageData{Heading: route.Name}}, nil
	}
	return notFoundPage(), nil
}

func (s *Site) homePage(ctx context.Context) (page, error) {
	sections, err := s.collections.Homepage(ctx)
	if err != nil {
		return page{}, err
	}
	services, err := s.collections.Services(ctx)
	if err != nil {
		return page{}, err
	}
	projects, err := s.collections.Projects(ctx)
	if err != nil {
		return page{}, err
	}
	bySection := make(map[string]*collections.HomepageContent, len(sections))
	for _, section := range sections {
		bySection[section.Section] = section
	}
	return page{template: "home", data: pageData{
		Sections: bySection,
		Services: services,
		Projects: projects,
	}}, nil
}

func (s *Site) contactPage(ctx context.Context, query url.Values) (page, error) {
	services, err := s.collections.Services(ctx)
	if err != nil {
		return page{}, err
	}
	data := pageData{Services: services}
	if query != nil {
		data.Form.Service = query.Get("service")
		if query.Get("sent") == "1" {
			data.Flash = "Thanks! We will get back to you within one business day."
		}
	}
	return page{template: "contact", data: data}, nil
}

func (s *Site) postPage(ctx context.Context, slug string) (page, error) {
	post, err := s.collections.PostBySlug(ctx, slug)
	if err != nil {
		if collections.IsNotFound(err) {
			return notFoundPage(), nil
		}
		return page{}, err
	}
	meta := &seo.Configuration{
		Title:       post.Title + " | TapDev Blog",
		Description: post.Excerpt,
		Author:      post.Author,
		OGType:      "article",
		OGImage:     post.ImageURL,
		StructuredData: map[string]any{
			"@context": "https://schema.org",
			"@type":    "BlogPosting",
			"headline": post.Title,
			"author":   map[string]any{"@type": "Person", "name": post.Author},
		},
	}
	if post.PublishedAt != nil {
		meta.StructuredData["datePublished"] = post.PublishedAt.UTC().Format("2006-01-02")
	}
	return page{template: "post", data: pageData{Post: post}, meta: meta}, nil
}

func (s *Site) servicePage(ctx context.Context, path, slug string) (page, error) {
	service, err := s.collections.ServiceBySlug(ctx, slug)
	if err != nil {
		if !collections.IsNotFound(err) {
			return page{}, err
		}
		// Registered service routes still render while their content is
		// missing.
		if route, ok := routes.Lookup(path); ok {
			return page{template: "page", data: pageData{Heading: route.Name}}, nil
		}
		return notFoundPage(), nil
	}
	var meta *seo.Configuration
	if _, registered := seo.PageDefaults(path); !registered {
		meta = &seo.Configuration{Title: service.Title + " | TapDev", Description: service.Summary}
	}
	return page{template: "service", data: pageData{Service: service}, meta: meta}, nil
}
