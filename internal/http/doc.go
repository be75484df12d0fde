// Package http exposes the site admin API on a net/http ServeMux.
//
// Routes mount under /admin/api by default:
//   - Session: /login, /logout
//   - Page registry: /routes
//   - SEO: /seo, /seo/override, /seo/overrides
//   - Code injection: /injection, /injection/save
//   - Collections: /collections/{table}, /collections/{table}/{id}
//   - Live preview (websocket): /preview
//
// Every route except /login requires a session token.
package http
