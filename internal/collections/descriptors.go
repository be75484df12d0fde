package collections

// Table names.
const (
	TableContactForms          = "contact_forms"
	TableNewsletterSubscribers = "newsletter_subscribers"
	TableBlogPosts             = "blog_posts"
	TablePortfolioProjects     = "portfolio_projects"
	TableServicePages          = "service_pages"
	TableHomepageContent       = "homepage_content"
)

// Tables lists every collection table in catalog order.
var Tables = []string{
	TableContactForms,
	TableNewsletterSubscribers,
	TableBlogPosts,
	TablePortfolioProjects,
	TableServicePages,
	TableHomepageContent,
}

var contactForms = Descriptor[*ContactForm]{
	Table:     TableContactForms,
	Resource:  "contact form",
	KeyColumn: "id",
	Key:       func(c *ContactForm) string { return c.ID.String() },
	Columns:   []string{"name", "email", "phone", "company", "service", "budget", "message", "status"},
	New:       func() *ContactForm { return &ContactForm{} },

	CacheNamespace: "contact_form",
}

var newsletterSubscribers = Descriptor[*NewsletterSubscriber]{
	Table:     TableNewsletterSubscribers,
	Resource:  "newsletter subscriber",
	KeyColumn: "email",
	Key:       func(n *NewsletterSubscriber) string { return n.Email },
	Columns:   []string{"email", "status", "source"},
	New:       func() *NewsletterSubscriber { return &NewsletterSubscriber{} },

	CacheNamespace: "newsletter_subscriber",
}

var blogPosts = Descriptor[*BlogPost]{
	Table:     TableBlogPosts,
	Resource:  "blog post",
	KeyColumn: "slug",
	Key:       func(b *BlogPost) string { return b.Slug },
	Columns:   []string{"title", "slug", "excerpt", "content", "author", "image_url", "tags", "published", "published_at"},
	New:       func() *BlogPost { return &BlogPost{} },

	CacheNamespace: "blog_post",
}

var portfolioProjects = Descriptor[*PortfolioProject]{
	Table:     TablePortfolioProjects,
	Resource:  "portfolio project",
	KeyColumn: "slug",
	Key:       func(p *PortfolioProject) string { return p.Slug },
	Columns:   []string{"title", "slug", "client", "category", "description", "image_url", "project_url", "technologies", "featured", "sort_order"},
	New:       func() *PortfolioProject { return &PortfolioProject{} },

	CacheNamespace: "portfolio_project",
}

var servicePages = Descriptor[*ServicePage]{
	Table:     TableServicePages,
	Resource:  "service page",
	KeyColumn: "slug",
	Key:       func(s *ServicePage) string { return s.Slug },
	Columns:   []string{"title", "slug", "summary", "content", "icon", "features", "sort_order", "published"},
	New:       func() *ServicePage { return &ServicePage{} },

	CacheNamespace: "service_page",
}

var homepageContent = Descriptor[*HomepageContent]{
	Table:     TableHomepageContent,
	Resource:  "homepage section",
	KeyColumn: "section",
	Key:       func(h *HomepageContent) string { return h.Section },
	Columns:   []string{"section", "title", "subtitle", "body", "cta_label", "cta_url", "sort_order"},
	New:       func() *HomepageContent { return &HomepageContent{} },

	CacheNamespace: "homepage_content",
}
