package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	site "github.com/tapdev/tapdev-site"
	"github.com/tapdev/tapdev-site/internal/browser"
	"github.com/tapdev/tapdev-site/internal/injection"
	"github.com/tapdev/tapdev-site/internal/seo"
)

func newPreviewCommand(opts *rootOptions) *cobra.Command {
	var pageStorage bool
	cmd := &cobra.Command{
		Use:   "preview <url>",
		Short: "Apply SEO and code injection to a live page in Chrome",
		Long: "Apply SEO and code injection to a live page in Chrome.\n\n" +
			"With --page-storage the SEO overrides and injection settings are read from\n" +
			"the page's own localStorage instead of the configured store.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := url.Parse(args[0])
			if err != nil || !target.IsAbs() {
				return fmt.Errorf("preview needs an absolute url, got %q", args[0])
			}
			module, err := opts.buildModule()
			if err != nil {
				return err
			}
			defer module.Close()

			ctx := cmd.Context()
			b, err := browser.Connect(ctx, module.Config().Browser)
			if err != nil {
				return err
			}
			defer b.Close()

			page, err := b.Open(ctx, target.String())
			if err != nil {
				return err
			}
			defer page.Close()

			seoSvc, injectionSvc := previewServices(module, page, pageStorage)

			path := target.Path
			if path == "" {
				path = "/"
			}
			resolved, err := seoSvc.SyncPath(ctx, page, path)
			if err != nil {
				return fmt.Errorf("apply seo: %w", err)
			}
			if injectionSvc != nil {
				if err := injectionSvc.ApplyPersisted(ctx, page); err != nil {
					return fmt.Errorf("apply injection: %w", err)
				}
			}
			count, err := page.CountTagged(ctx, injection.MarkerAttribute)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "title: %s\n", resolved.Title)
			fmt.Fprintf(out, "injected nodes: %d\n", count)
			return nil
		},
	}
	cmd.Flags().BoolVar(&pageStorage, "page-storage", false, "Read settings from the page's localStorage")
	return cmd
}

// previewServices returns the module services, or services bound to the
// page's localStorage when pageStorage is set. The injection service is nil
// when injection is disabled and page storage is off.
func previewServices(module *site.Module, page *browser.Page, pageStorage bool) (seo.Service, injection.Service) {
	if !pageStorage {
		return module.SEO(), module.Injection()
	}
	store := browser.NewLocalStorage(page)
	return seo.NewService(store), injection.NewService(store)
}
