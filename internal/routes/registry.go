package routes

import (
	"slices"
	"strings"
)

// Route maps a public path to the name shown in the admin page selector.
type Route struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

var registry = []Route{
	{Path: "/", Name: "Home"},
	{Path: "/about", Name: "About Us"},
	{Path: "/services", Name: "Services"},
	{Path: "/services/web-development", Name: "Web Development"},
	{Path: "/services/web-design", Name: "Web Design"},
	{Path: "/services/ecommerce", Name: "E-commerce Development"},
	{Path: "/services/seo", Name: "SEO Services"},
	{Path: "/services/mobile-apps", Name: "Mobile App Development"},
	{Path: "/services/ui-ux-design", Name: "UI/UX Design"},
	{Path: "/services/maintenance", Name: "Website Maintenance"},
	{Path: "/services/hosting", Name: "Web Hosting"},
	{Path: "/services/digital-marketing", Name: "Digital Marketing"},
	{Path: "/services/branding", Name: "Branding"},
	{Path: "/services/wordpress", Name: "WordPress Development"},
	{Path: "/services/shopify", Name: "Shopify Development"},
	{Path: "/services/custom-software", Name: "Custom Software"},
	{Path: "/portfolio", Name: "Portfolio"},
	{Path: "/blog", Name: "Blog"},
	{Path: "/contact", Name: "Contact"},
	{Path: "/pricing", Name: "Pricing"},
	{Path: "/faq", Name: "FAQ"},
	{Path: "/careers", Name: "Careers"},
	{Path: "/team", Name: "Our Team"},
	{Path: "/testimonials", Name: "Testimonials"},
	{Path: "/process", Name: "Our Process"},
	{Path: "/privacy-policy", Name: "Privacy Policy"},
	{Path: "/terms-of-service", Name: "Terms of Service"},
	{Path: "/cookie-policy", Name: "Cookie Policy"},
	{Path: "/sitemap", Name: "Sitemap"},
	{Path: "/get-a-quote", Name: "Get a Quote"},
}

// All returns the registry in display order. The slice is a copy.
func All() []Route {
	return slices.Clone(registry)
}

// Paths returns the registered paths in display order.
func Paths() []string {
	paths := make([]string, len(registry))
	for i, route := range registry {
		paths[i] = route.Path
	}
	return paths
}

// Lookup finds the route registered for exactly path.
func Lookup(path string) (Route, bool) {
	for _, route := range registry {
		if route.Path == path {
			return route, true
		}
	}
	return Route{}, false
}

// ServiceSlug returns the slug of a /services/<slug> route.
func ServiceSlug(path string) (string, bool) {
	slug, ok := strings.CutPrefix(path, "/services/")
	if !ok || slug == "" || strings.Contains(slug, "/") {
		return "", false
	}
	return slug, true
}
