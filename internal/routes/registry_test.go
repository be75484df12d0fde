package routes_test

import (
	"testing"

	"github.com/tapdev/tapdev-site/internal/routes"
)

func TestRegistryIsOrderedAndUnique(t *testing.T) {
	all := routes.All()
	if len(all) != 30 {
		t.Fatalf("expected 30 routes, got %d", len(all))
	}
	if all[0].Path != "/" {
		t.Fatalf("expected home first, got %q", all[0].Path)
	}
	seen := map[string]bool{}
	for _, route := range all {
		if route.Name == "" {
			t.Fatalf("route %q has no name", route.Path)
		}
		if seen[route.Path] {
			t.Fatalf("duplicate path %q", route.Path)
		}
		seen[route.Path] = true
	}
}

func TestAllReturnsCopy(t *testing.T) {
	all := routes.All()
	all[0].Name = "changed"
	if routes.All()[0].Name != "Home" {
		t.Fatal("expected registry to be unaffected by caller mutation")
	}
}

func TestLookup(t *testing.T) {
	route, ok := routes.Lookup("/contact")
	if !ok || route.Name != "Contact" {
		t.Fatalf("Lookup(/contact) = %+v, %v", route, ok)
	}
	if _, ok := routes.Lookup("/contact/"); ok {
		t.Fatal("expected exact match only")
	}
}

func TestServiceSlug(t *testing.T) {
	if slug, ok := routes.ServiceSlug("/services/seo"); !ok || slug != "seo" {
		t.Fatalf("ServiceSlug = %q, %v", slug, ok)
	}
	for _, path := range []string{"/services", "/services/", "/services/a/b", "/blog/x"} {
		if _, ok := routes.ServiceSlug(path); ok {
			t.Fatalf("expected %q to be rejected", path)
		}
	}
}
