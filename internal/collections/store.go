package collections

import (
	"context"
	"encoding/json"
	"fmt"

	cache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Store groups the repositories of every table.
type Store struct {
	ContactForms          Repository[*ContactForm]
	NewsletterSubscribers Repository[*NewsletterSubscriber]
	BlogPosts             Repository[*BlogPost]
	PortfolioProjects     Repository[*PortfolioProject]
	ServicePages          Repository[*ServicePage]
	HomepageContent       Repository[*HomepageContent]
}

// NewMemoryStore returns a store backed by in-memory repositories.
func NewMemoryStore() *Store {
	return &Store{
		ContactForms:          NewMemoryRepository(contactForms),
		NewsletterSubscribers: NewMemoryRepository(newsletterSubscribers),
		BlogPosts:             NewMemoryRepository(blogPosts),
		PortfolioProjects:     NewMemoryRepository(portfolioProjects),
		ServicePages:          NewMemoryRepository(servicePages),
		HomepageContent:       NewMemoryRepository(homepageContent),
	}
}

// NewBunStore returns a store backed by db. cacheService and serializer are
// optional; when both are set reads are cached.
func NewBunStore(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *Store {
	return &Store{
		ContactForms:          NewBunRepositoryWithCache(db, contactForms, cacheService, serializer),
		NewsletterSubscribers: NewBunRepositoryWithCache(db, newsletterSubscribers, cacheService, serializer),
		BlogPosts:             NewBunRepositoryWithCache(db, blogPosts, cacheService, serializer),
		PortfolioProjects:     NewBunRepositoryWithCache(db, portfolioProjects, cacheService, serializer),
		ServicePages:          NewBunRepositoryWithCache(db, servicePages, cacheService, serializer),
		HomepageContent:       NewBunRepositoryWithCache(db, homepageContent, cacheService, serializer),
	}
}

// Models returns a zero record of every table, for schema creation.
func Models() []any {
	return []any{
		(*ContactForm)(nil),
		(*NewsletterSubscriber)(nil),
		(*BlogPost)(nil),
		(*PortfolioProject)(nil),
		(*ServicePage)(nil),
		(*HomepageContent)(nil),
	}
}

// Table is the untyped view of one collection used by the admin API.
type Table interface {
	Name() string
	List(ctx context.Context, opts ListOptions) (any, error)
	Insert(ctx context.Context, raw json.RawMessage) (any, error)
	Update(ctx context.Context, id uuid.UUID, patch map[string]any) (any, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Table returns the untyped view of the named table.
func (s *Store) Table(name string) (Table, error) {
	switch name {
	case TableContactForms:
		return table[*ContactForm]{desc: contactForms, repo: s.ContactForms}, nil
	case TableNewsletterSubscribers:
		return table[*NewsletterSubscriber]{desc: newsletterSubscribers, repo: s.NewsletterSubscribers}, nil
	case TableBlogPosts:
		return table[*BlogPost]{desc: blogPosts, repo: s.BlogPosts}, nil
	case TablePortfolioProjects:
		return table[*PortfolioProject]{desc: portfolioProjects, repo: s.PortfolioProjects}, nil
	case TableServicePages:
		return table[*ServicePage]{desc: servicePages, repo: s.ServicePages}, nil
	case TableHomepageContent:
		return table[*HomepageContent]{desc: homepageContent, repo: s.HomepageContent}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
}

type table[T Record] struct {
	desc Descriptor[T]
	repo Repository[T]
}

func (t table[T]) Name() string {
	return t.desc.Table
}

func (t table[T]) List(ctx context.Context, opts ListOptions) (any, error) {
	return t.repo.List(ctx, opts)
}

func (t table[T]) Insert(ctx context.Context, raw json.RawMessage) (any, error) {
	record := t.desc.New()
	if err := json.Unmarshal(raw, record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return t.repo.Insert(ctx, record)
}

func (t table[T]) Update(ctx context.Context, id uuid.UUID, patch map[string]any) (any, error) {
	return t.repo.Update(ctx, id, patch)
}

func (t table[T]) Delete(ctx context.Context, id uuid.UUID) error {
	return t.repo.Delete(ctx, id)
}
