package collections

import (
	"context"
	"embed"
	"fmt"

	"github.com/tapdev/tapdev-site/internal/identity"
	"github.com/tapdev/tapdev-site/internal/markdown"
)

//go:embed seed/posts/*.md seed/services/*.md
var seedFS embed.FS

// SeedResult counts the records inserted by Seed.
type SeedResult struct {
	Posts    int
	Services int
	Projects int
	Homepage int
}

// Seed fills empty tables with the bundled content. Tables that already have
// rows are left alone, so calling it on every start is safe.
func Seed(ctx context.Context, store *Store) (SeedResult, error) {
	var result SeedResult
	if store == nil {
		return result, ErrStoreRequired
	}

	var err error
	if result.Posts, err = seedTable(ctx, store.BlogPosts, seedPosts); err != nil {
		return result, err
	}
	if result.Services, err = seedTable(ctx, store.ServicePages, seedServices); err != nil {
		return result, err
	}
	if result.Projects, err = seedTable(ctx, store.PortfolioProjects, seedProjects); err != nil {
		return result, err
	}
	if result.Homepage, err = seedTable(ctx, store.HomepageContent, seedHomepage); err != nil {
		return result, err
	}
	return result, nil
}

func seedTable[T Record](ctx context.Context, repo Repository[T], load func(context.Context) ([]T, error)) (int, error) {
	existing, err := repo.List(ctx, ListOptions{Limit: 1})
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	records, err := load(ctx)
	if err != nil {
		return 0, err
	}
	for _, record := range records {
		if _, err := repo.Insert(ctx, record); err != nil {
			return 0, fmt.Errorf("seed: %w", err)
		}
	}
	return len(records), nil
}

func seedPosts(ctx context.Context) ([]*BlogPost, error) {
	docs, err := markdown.LoadDirectory(ctx, seedFS, "seed/posts")
	if err != nil {
		return nil, err
	}
	posts := make([]*BlogPost, 0, len(docs))
	for _, doc := range docs {
		meta := doc.FrontMatter
		postSlug := meta.Slug
		if postSlug == "" {
			postSlug = Slugify(meta.Title)
		}
		post := &BlogPost{
			ID:        identity.SeedUUID(TableBlogPosts, postSlug),
			Title:     meta.Title,
			Slug:      postSlug,
			Excerpt:   meta.Summary,
			Content:   string(doc.Body),
			Author:    meta.Author,
			ImageURL:  meta.Image,
			Tags:      append([]string(nil), meta.Tags...),
			Published: meta.Published,
		}
		if !meta.Date.IsZero() {
			published := meta.Date.UTC()
			post.PublishedAt = &published
			post.CreatedAt = published
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func seedServices(ctx context.Context) ([]*ServicePage, error) {
	docs, err := markdown.LoadDirectory(ctx, seedFS, "seed/services")
	if err != nil {
		return nil, err
	}
	pages := make([]*ServicePage, 0, len(docs))
	for _, doc := range docs {
		meta := doc.FrontMatter
		pageSlug := meta.Slug
		if pageSlug == "" {
			pageSlug = Slugify(meta.Title)
		}
		pages = append(pages, &ServicePage{
			ID:        identity.SeedUUID(TableServicePages, pageSlug),
			Title:     meta.Title,
			Slug:      pageSlug,
			Summary:   meta.Summary,
			Content:   string(doc.Body),
			Icon:      meta.String("icon"),
			Features:  meta.Strings("features"),
			SortOrder: meta.Order,
			Published: meta.Published,
		})
	}
	return pages, nil
}

func seedProjects(context.Context) ([]*PortfolioProject, error) {
	projects := []*PortfolioProject{
		{
			Title:        "Harbor Coffee Online Store",
			Client:       "Harbor Coffee Roasters",
			Category:     "E-commerce",
			Description:  "Subscription coffee store with a custom checkout and wholesale portal.",
			ImageURL:     "https://tapdev.com/images/portfolio/harbor-coffee.jpg",
			Technologies: []string{"Shopify", "Liquid", "Node.js"},
			Featured:     true,
		},
		{
			Title:        "Northwind Clinic Booking",
			Client:       "Northwind Health",
			Category:     "Web Application",
			Description:  "Appointment booking with patient reminders and a staff dashboard.",
			ImageURL:     "https://tapdev.com/images/portfolio/northwind.jpg",
			Technologies: []string{"Go", "PostgreSQL", "React"},
			Featured:     true,
		},
		{
			Title:        "Summit Realty Website",
			Client:       "Summit Realty",
			Category:     "Web Design",
			Description:  "Listing search, agent profiles and lead capture for a regional brokerage.",
			ImageURL:     "https://tapdev.com/images/portfolio/summit-realty.jpg",
			Technologies: []string{"WordPress", "PHP", "Algolia"},
		},
		{
			Title:        "Pulse Fitness App",
			Client:       "Pulse Studios",
			Category:     "Mobile App",
			Description:  "Class schedules, bookings and memberships on iOS and Android.",
			ImageURL:     "https://tapdev.com/images/portfolio/pulse.jpg",
			Technologies: []string{"Flutter", "Firebase"},
		},
	}
	for i, project := range projects {
		project.Slug = Slugify(project.Title)
		project.ID = identity.SeedUUID(TablePortfolioProjects, project.Slug)
		project.SortOrder = i + 1
	}
	return projects, nil
}

func seedHomepage(context.Context) ([]*HomepageContent, error) {
	sections := []*HomepageContent{
		{
			Section:  "hero",
			Title:    "We build websites that grow your business",
			Subtitle: "Design, development and marketing from one team.",
			CTALabel: "Get a free quote",
			CTAURL:   "/get-a-quote",
		},
		{
			Section:  "services",
			Title:    "What we do",
			Subtitle: "From a first landing page to a full e-commerce platform.",
			CTALabel: "All services",
			CTAURL:   "/services",
		},
		{
			Section:  "portfolio",
			Title:    "Recent work",
			Subtitle: "A few of the projects we are proud of.",
			CTALabel: "View portfolio",
			CTAURL:   "/portfolio",
		},
		{
			Section:  "cta",
			Title:    "Ready to start?",
			Body:     "Tell us about your project and we will reply within one business day.",
			CTALabel: "Contact us",
			CTAURL:   "/contact",
		},
	}
	for i, section := range sections {
		section.ID = identity.SeedUUID(TableHomepageContent, section.Section)
		section.SortOrder = i + 1
	}
	return sections, nil
}
