package collections

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Record is implemented by every collection model.
type Record interface {
	GetID() uuid.UUID
	SetID(id uuid.UUID)
	// Touch stamps the record before a write.
	Touch(now time.Time)
	Validate() error
}

// ContactForm is a visitor enquiry from the contact page.
type ContactForm struct {
	bun.BaseModel `bun:"table:contact_forms,alias:cf"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Email     string    `bun:"email,notnull" json:"email"`
	Phone     string    `bun:"phone" json:"phone"`
	Company   string    `bun:"company" json:"company"`
	Service   string    `bun:"service" json:"service"`
	Budget    string    `bun:"budget" json:"budget"`
	Message   string    `bun:"message,notnull" json:"message"`
	Status    string    `bun:"status,notnull,default:'new'" json:"status"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Contact form statuses.
const (
	ContactStatusNew      = "new"
	ContactStatusRead     = "read"
	ContactStatusReplied  = "replied"
	ContactStatusArchived = "archived"
)

func (c *ContactForm) GetID() uuid.UUID    { return c.ID }
func (c *ContactForm) SetID(id uuid.UUID)  { c.ID = id }
func (c *ContactForm) Touch(now time.Time) { touch(&c.CreatedAt, &c.UpdatedAt, now) }

func (c *ContactForm) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.Phone, validation.Length(0, 50)),
		validation.Field(&c.Message, validation.Required, validation.Length(1, 5000)),
		validation.Field(&c.Status, validation.In(ContactStatusNew, ContactStatusRead, ContactStatusReplied, ContactStatusArchived)),
	)
}

// NewsletterSubscriber is a newsletter sign-up, unique per email.
type NewsletterSubscriber struct {
	bun.BaseModel `bun:"table:newsletter_subscribers,alias:ns"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Email     string    `bun:"email,notnull,unique" json:"email"`
	Status    string    `bun:"status,notnull,default:'subscribed'" json:"status"`
	Source    string    `bun:"source" json:"source"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Subscriber statuses.
const (
	SubscriberActive       = "subscribed"
	SubscriberUnsubscribed = "unsubscribed"
)

func (n *NewsletterSubscriber) GetID() uuid.UUID    { return n.ID }
func (n *NewsletterSubscriber) SetID(id uuid.UUID)  { n.ID = id }
func (n *NewsletterSubscriber) Touch(now time.Time) { touch(&n.CreatedAt, &n.UpdatedAt, now) }

func (n *NewsletterSubscriber) Validate() error {
	return validation.ValidateStruct(n,
		validation.Field(&n.Email, validation.Required, is.Email),
		validation.Field(&n.Status, validation.In(SubscriberActive, SubscriberUnsubscribed)),
	)
}

// BlogPost is an article. Content holds Markdown.
type BlogPost struct {
	bun.BaseModel `bun:"table:blog_posts,alias:bp"`

	ID          uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Title       string     `bun:"title,notnull" json:"title"`
	Slug        string     `bun:"slug,notnull,unique" json:"slug"`
	Excerpt     string     `bun:"excerpt" json:"excerpt"`
	Content     string     `bun:"content" json:"content"`
	Author      string     `bun:"author" json:"author"`
	ImageURL    string     `bun:"image_url" json:"image_url"`
	Tags        []string   `bun:"tags,type:jsonb" json:"tags"`
	Published   bool       `bun:"published,notnull,default:false" json:"published"`
	PublishedAt *time.Time `bun:"published_at,nullzero" json:"published_at,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

func (b *BlogPost) GetID() uuid.UUID   { return b.ID }
func (b *BlogPost) SetID(id uuid.UUID) { b.ID = id }

func (b *BlogPost) Touch(now time.Time) {
	touch(&b.CreatedAt, &b.UpdatedAt, now)
	if b.Published && b.PublishedAt == nil {
		at := now
		b.PublishedAt = &at
	}
}

func (b *BlogPost) Validate() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.Title, validation.Required, validation.Length(1, 300)),
		validation.Field(&b.Slug, validation.Required, validation.Match(slugPattern)),
		validation.Field(&b.ImageURL, is.URL),
	)
}

// PortfolioProject is a delivered client project.
type PortfolioProject struct {
	bun.BaseModel `bun:"table:portfolio_projects,alias:pp"`

	ID           uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Title        string    `bun:"title,notnull" json:"title"`
	Slug         string    `bun:"slug,notnull,unique" json:"slug"`
	Client       string    `bun:"client" json:"client"`
	Category     string    `bun:"category" json:"category"`
	Description  string    `bun:"description" json:"description"`
	ImageURL     string    `bun:"image_url" json:"image_url"`
	ProjectURL   string    `bun:"project_url" json:"project_url"`
	Technologies []string  `bun:"technologies,type:jsonb" json:"technologies"`
	Featured     bool      `bun:"featured,notnull,default:false" json:"featured"`
	SortOrder    int       `bun:"sort_order,notnull,default:0" json:"sort_order"`
	CreatedAt    time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

func (p *PortfolioProject) GetID() uuid.UUID    { return p.ID }
func (p *PortfolioProject) SetID(id uuid.UUID)  { p.ID = id }
func (p *PortfolioProject) Touch(now time.Time) { touch(&p.CreatedAt, &p.UpdatedAt, now) }

func (p *PortfolioProject) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Title, validation.Required, validation.Length(1, 300)),
		validation.Field(&p.Slug, validation.Required, validation.Match(slugPattern)),
		validation.Field(&p.ImageURL, is.URL),
		validation.Field(&p.ProjectURL, is.URL),
	)
}

// ServicePage is the body of a /services/<slug> page. Content holds Markdown.
type ServicePage struct {
	bun.BaseModel `bun:"table:service_pages,alias:sp"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Title     string    `bun:"title,notnull" json:"title"`
	Slug      string    `bun:"slug,notnull,unique" json:"slug"`
	Summary   string    `bun:"summary" json:"summary"`
	Content   string    `bun:"content" json:"content"`
	Icon      string    `bun:"icon" json:"icon"`
	Features  []string  `bun:"features,type:jsonb" json:"features"`
	SortOrder int       `bun:"sort_order,notnull,default:0" json:"sort_order"`
	Published bool      `bun:"published,notnull,default:true" json:"published"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

func (s *ServicePage) GetID() uuid.UUID    { return s.ID }
func (s *ServicePage) SetID(id uuid.UUID)  { s.ID = id }
func (s *ServicePage) Touch(now time.Time) { touch(&s.CreatedAt, &s.UpdatedAt, now) }

func (s *ServicePage) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Title, validation.Required, validation.Length(1, 300)),
		validation.Field(&s.Slug, validation.Required, validation.Match(slugPattern)),
	)
}

// HomepageContent is one section of the home page, keyed by Section.
type HomepageContent struct {
	bun.BaseModel `bun:"table:homepage_content,alias:hc"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Section   string    `bun:"section,notnull,unique" json:"section"`
	Title     string    `bun:"title" json:"title"`
	Subtitle  string    `bun:"subtitle" json:"subtitle"`
	Body      string    `bun:"body" json:"body"`
	CTALabel  string    `bun:"cta_label" json:"cta_label"`
	CTAURL    string    `bun:"cta_url" json:"cta_url"`
	SortOrder int       `bun:"sort_order,notnull,default:0" json:"sort_order"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

func (h *HomepageContent) GetID() uuid.UUID    { return h.ID }
func (h *HomepageContent) SetID(id uuid.UUID)  { h.ID = id }
func (h *HomepageContent) Touch(now time.Time) { touch(&h.CreatedAt, &h.UpdatedAt, now) }

func (h *HomepageContent) Validate() error {
	return validation.ValidateStruct(h,
		validation.Field(&h.Section, validation.Required, validation.Match(slugPattern)),
		validation.Field(&h.Title, validation.Length(0, 300)),
	)
}

func touch(created, updated *time.Time, now time.Time) {
	now = now.UTC()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}
