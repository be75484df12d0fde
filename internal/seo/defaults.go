package seo

const (
	siteURL      = "https://tapdev.com"
	defaultImage = siteURL + "/images/og-image.jpg"
)

var globalDefaults = Configuration{
	Title:       "TapDev — Home",
	Description: "TapDev is a web development agency building fast, modern websites, e-commerce stores and custom software for growing businesses.",
	Keywords:    "web development, web design, ecommerce, seo, mobile apps, custom software, agency",
	Robots:      "index, follow",
	Author:      "TapDev",
	Viewport:    "width=device-width, initial-scale=1.0",
	ThemeColor:  "#0f172a",
	OGType:      "website",
	OGImage:     defaultImage,
	TwitterCard: "summary_large_image",
	StructuredData: map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     "TapDev",
		"url":      siteURL,
		"logo":     siteURL + "/images/logo.png",
		"sameAs": []any{
			"https://www.linkedin.com/company/tapdev",
			"https://twitter.com/tapdev",
		},
		"contactPoint": map[string]any{
			"@type":       "ContactPoint",
			"contactType": "sales",
			"email":       "hello@tapdev.com",
		},
	},
}

var pageDefaults = map[string]Configuration{
	"/": {
		Title:   "TapDev — Home",
		OGTitle: "TapDev | Web Development Agency",
	},
	"/about": {
		Title:       "About TapDev",
		Description: "Meet the team behind TapDev and learn how we help businesses grow online.",
	},
	"/services": {
		Title:       "Our Services | TapDev",
		Description: "Web development, design, e-commerce, SEO, mobile apps and more from one agency.",
	},
	"/services/web-development": {
		Title:       "Web Development Services | TapDev",
		Description: "Custom, high-performance websites and web applications built with modern stacks.",
	},
	"/services/web-design": {
		Title:       "Web Design Services | TapDev",
		Description: "Responsive, conversion-focused web design tailored to your brand.",
	},
	"/services/ecommerce": {
		Title:       "E-commerce Development | TapDev",
		Description: "Online stores that sell, from catalog design to checkout optimization.",
	},
	"/services/seo": {
		Title:       "SEO Services | TapDev",
		Description: "Technical SEO, content strategy and analytics that grow organic traffic.",
	},
	"/services/mobile-apps": {
		Title:       "Mobile App Development | TapDev",
		Description: "Native and cross-platform mobile apps for iOS and Android.",
	},
	"/services/ui-ux-design": {
		Title:       "UI/UX Design | TapDev",
		Description: "Research-driven interface and experience design for web and mobile products.",
	},
	"/services/maintenance": {
		Title:       "Website Maintenance | TapDev",
		Description: "Updates, backups, monitoring and security patches so your site stays healthy.",
	},
	"/services/hosting": {
		Title:       "Web Hosting | TapDev",
		Description: "Managed, secure and fast hosting for business websites.",
	},
	"/services/digital-marketing": {
		Title:       "Digital Marketing | TapDev",
		Description: "Paid media, email and social campaigns measured against real business goals.",
	},
	"/services/branding": {
		Title:       "Branding | TapDev",
		Description: "Logos, visual identity and brand guidelines that make you memorable.",
	},
	"/services/wordpress": {
		Title:       "WordPress Development | TapDev",
		Description: "Custom WordPress themes, plugins and performance tuning.",
	},
	"/services/shopify": {
		Title:       "Shopify Development | TapDev",
		Description: "Shopify stores, custom themes and app integrations.",
	},
	"/services/custom-software": {
		Title:       "Custom Software Development | TapDev",
		Description: "Bespoke software, internal tools and integrations built around your workflow.",
	},
	"/portfolio": {
		Title:       "Portfolio | TapDev",
		Description: "Selected websites, stores and apps we have delivered for our clients.",
	},
	"/blog": {
		Title:       "Blog | TapDev",
		Description: "Articles on web development, design, SEO and growing your business online.",
		OGType:      "blog",
	},
	"/contact": {
		Title:       "Contact TapDev",
		Description: "Tell us about your project and get a response within one business day.",
	},
	"/pricing": {
		Title:       "Pricing | TapDev",
		Description: "Transparent packages for websites, stores and ongoing support.",
	},
	"/faq": {
		Title:       "FAQ | TapDev",
		Description: "Answers to common questions about timelines, pricing and our process.",
	},
	"/careers": {
		Title:       "Careers at TapDev",
		Description: "Join a remote-friendly team of developers and designers.",
	},
	"/team": {
		Title:       "Our Team | TapDev",
		Description: "The developers, designers and strategists behind TapDev.",
	},
	"/testimonials": {
		Title:       "Testimonials | TapDev",
		Description: "What our clients say about working with TapDev.",
	},
	"/process": {
		Title:       "Our Process | TapDev",
		Description: "Discovery, design, build and launch: how we deliver projects.",
	},
	"/privacy-policy": {
		Title:       "Privacy Policy | TapDev",
		Description: "How TapDev collects, uses and protects your information.",
		Robots:      "noindex, follow",
	},
	"/terms-of-service": {
		Title:       "Terms of Service | TapDev",
		Description: "The terms that govern the use of TapDev services and this website.",
		Robots:      "noindex, follow",
	},
	"/cookie-policy": {
		Title:       "Cookie Policy | TapDev",
		Description: "Which cookies this website uses and how to control them.",
		Robots:      "noindex, follow",
	},
	"/sitemap": {
		Title:       "Sitemap | TapDev",
		Description: "Every page on the TapDev website.",
	},
	"/get-a-quote": {
		Title:       "Get a Quote | TapDev",
		Description: "Request a free, no-obligation estimate for your project.",
	},
}

// GlobalDefaults returns the site-wide base configuration.
func GlobalDefaults() Configuration {
	return globalDefaults.Clone()
}

// PageDefaults returns the defaults registered for exactly path.
func PageDefaults(path string) (Configuration, bool) {
	cfg, ok := pageDefaults[path]
	if !ok {
		return Configuration{}, false
	}
	return cfg.Clone(), true
}
