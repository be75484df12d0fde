package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/tapdev/tapdev-site/internal/collections"
)

const maxFormBytes = 64 << 10

func (s *Site) handleContact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	input := collections.ContactSubmission{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Phone:   r.PostForm.Get("phone"),
		Company: r.PostForm.Get("company"),
		Service: r.PostForm.Get("service"),
		Budget:  r.PostForm.Get("budget"),
		Message: r.PostForm.Get("message"),
	}

	_, err := s.collections.SubmitContact(r.Context(), input)
	if err == nil {
		http.Redirect(w, r, "/contact?sent=1", http.StatusSeeOther)
		return
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		s.fail(w, r, err)
		return
	}
	p, perr := s.contactPage(r.Context(), nil)
	if perr != nil {
		s.fail(w, r, perr)
		return
	}
	p.status = http.StatusUnprocessableEntity
	p.data.Form = input
	p.data.Errors = make(map[string]string, len(fieldErrs))
	for field, fieldErr := range fieldErrs {
		p.data.Errors[field] = fieldErr.Error()
	}
	s.write(w, r, "/contact", p)
}

func (s *Site) handleNewsletter(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	source := localPath(r.PostForm.Get("source"))
	_, err := s.collections.Subscribe(r.Context(), r.PostForm.Get("email"), source)
	status := "1"
	if err != nil {
		var fieldErrs validation.Errors
		if !errors.As(err, &fieldErrs) {
			s.fail(w, r, err)
			return
		}
		status = "0"
	}
	target := url.URL{Path: source, RawQuery: url.Values{"subscribed": {status}}.Encode()}
	http.Redirect(w, r, target.String(), http.StatusSeeOther)
}

// localPath keeps redirects on this site.
func localPath(value string) string {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "/") || strings.HasPrefix(value, "//") || strings.Contains(value, "\\") {
		return "/"
	}
	parsed, err := url.Parse(value)
	if err != nil || parsed.Host != "" || parsed.Scheme != "" {
		return "/"
	}
	return cleanPath(parsed.Path)
}
