package collections

import (
	"context"
	"errors"
	"html"
	"html/template"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/goliatone/go-slug"
	"github.com/microcosm-cc/bluemonday"

	"github.com/tapdev/tapdev-site/internal/logging"
	"github.com/tapdev/tapdev-site/internal/markdown"
	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

var ErrStoreRequired = errors.New("collections: store required")

// Service exposes the site-facing operations over the collections.
type Service interface {
	// SubmitContact validates and stores a contact enquiry.
	SubmitContact(ctx context.Context, input ContactSubmission) (*ContactForm, error)
	// Subscribe adds email to the newsletter. Subscribing twice returns the
	// existing record, reactivating it when needed.
	Subscribe(ctx context.Context, email, source string) (*NewsletterSubscriber, error)
	PublishedPosts(ctx context.Context, limit int) ([]*BlogPost, error)
	PostBySlug(ctx context.Context, slug string) (*RenderedPost, error)
	Projects(ctx context.Context) ([]*PortfolioProject, error)
	Services(ctx context.Context) ([]*ServicePage, error)
	ServiceBySlug(ctx context.Context, slug string) (*RenderedService, error)
	Homepage(ctx context.Context) ([]*HomepageContent, error)
	// Store returns the underlying repositories for admin CRUD.
	Store() *Store
}

// ContactSubmission is the raw contact form input.
type ContactSubmission struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Service string
	Budget  string
	Message string
}

func (c ContactSubmission) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.Message, validation.Required, validation.Length(1, 5000)),
	)
}

// RenderedPost is a blog post with its Markdown body rendered.
type RenderedPost struct {
	*BlogPost
	HTML template.HTML
}

// RenderedService is a service page with its Markdown body rendered.
type RenderedService struct {
	*ServicePage
	HTML template.HTML
}

// ServiceOption configures the service.
type ServiceOption func(*service)

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderer replaces the Markdown renderer.
func WithRenderer(renderer *markdown.Renderer) ServiceOption {
	return func(s *service) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

type service struct {
	store    *Store
	renderer *markdown.Renderer
	strict   *bluemonday.Policy
	logger   interfaces.Logger
}

// NewService constructs a Service over store.
func NewService(store *Store, opts ...ServiceOption) (Service, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	s := &service{
		store:    store,
		renderer: markdown.NewRenderer(markdown.Options{}),
		strict:   bluemonday.StrictPolicy(),
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *service) Store() *Store {
	return s.store
}

func (s *service) SubmitContact(ctx context.Context, input ContactSubmission) (*ContactForm, error) {
	input = ContactSubmission{
		Name:    s.clean(input.Name),
		Email:   strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:   s.clean(input.Phone),
		Company: s.clean(input.Company),
		Service: s.clean(input.Service),
		Budget:  s.clean(input.Budget),
		Message: s.clean(input.Message),
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	record, err := s.store.ContactForms.Insert(ctx, &ContactForm{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Company: input.Company,
		Service: input.Service,
		Budget:  input.Budget,
		Message: input.Message,
		Status:  ContactStatusNew,
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithContext(ctx).Info("collections.contact.submitted", "id", record.ID.String(), "service", record.Service)
	return record, nil
}

func (s *service) Subscribe(ctx context.Context, email, source string) (*NewsletterSubscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return nil, validation.Errors{"email": err}
	}

	existing, err := s.store.NewsletterSubscribers.Find(ctx, email)
	switch {
	case err == nil:
		if existing.Status == SubscriberActive {
			return existing, nil
		}
		return s.store.NewsletterSubscribers.Update(ctx, existing.ID, map[string]any{"status": SubscriberActive})
	case !isNotFound(err):
		return nil, err
	}

	record, err := s.store.NewsletterSubscribers.Insert(ctx, &NewsletterSubscriber{
		Email:  email,
		Status: SubscriberActive,
		Source: s.clean(source),
	})
	if errors.Is(err, ErrDuplicate) {
		return s.store.NewsletterSubscribers.Find(ctx, email)
	}
	if err != nil {
		return nil, err
	}
	s.logger.WithContext(ctx).Info("collections.newsletter.subscribed", "id", record.ID.String())
	return record, nil
}

func (s *service) PublishedPosts(ctx context.Context, limit int) ([]*BlogPost, error) {
	return s.store.BlogPosts.List(ctx, ListOptions{
		OrderBy:    "published_at",
		Descending: true,
		Limit:      limit,
		Filter:     map[string]any{"published": true},
	})
}

func (s *service) PostBySlug(ctx context.Context, value string) (*RenderedPost, error) {
	post, err := s.store.BlogPosts.Find(ctx, normalizeSlug(value))
	if err != nil {
		return nil, err
	}
	if !post.Published {
		return nil, blogPosts.notFound(value)
	}
	body, err := s.renderer.Render([]byte(post.Content))
	if err != nil {
		return nil, err
	}
	return &RenderedPost{BlogPost: post, HTML: template.HTML(body)}, nil
}

func (s *service) Projects(ctx context.Context) ([]*PortfolioProject, error) {
	return s.store.PortfolioProjects.List(ctx, ListOptions{OrderBy: "sort_order"})
}

func (s *service) Services(ctx context.Context) ([]*ServicePage, error) {
	return s.store.ServicePages.List(ctx, ListOptions{
		OrderBy: "sort_order",
		Filter:  map[string]any{"published": true},
	})
}

func (s *service) ServiceBySlug(ctx context.Context, value string) (*RenderedService, error) {
	page, err := s.store.ServicePages.Find(ctx, normalizeSlug(value))
	if err != nil {
		return nil, err
	}
	if !page.Published {
		return nil, servicePages.notFound(value)
	}
	body, err := s.renderer.Render([]byte(page.Content))
	if err != nil {
		return nil, err
	}
	return &RenderedService{ServicePage: page, HTML: template.HTML(body)}, nil
}

func (s *service) Homepage(ctx context.Context) ([]*HomepageContent, error) {
	return s.store.HomepageContent.List(ctx, ListOptions{OrderBy: "sort_order"})
}

// clean strips markup from visitor input. Entities are decoded again so the
// stored value is plain text and templates escape it once.
func (s *service) clean(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.strict.Sanitize(value)))
}

// Slugify derives a URL slug from a title.
func Slugify(value string) string {
	return normalizeSlug(value)
}

func normalizeSlug(value string) string {
	normalized, err := slug.Normalize(value)
	if err != nil || normalized == "" {
		return normalizeKey(value)
	}
	return normalized
}

func isNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// IsNotFound reports whether err means a record does not exist.
func IsNotFound(err error) bool {
	return isNotFound(err)
}
