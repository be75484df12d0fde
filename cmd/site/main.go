// Command site runs the TapDev site and its maintenance tasks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	site "github.com/tapdev/tapdev-site"
)

// moduleBuilder is swapped in tests.
var moduleBuilder = site.New

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "site:", err)
		stop()
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "site",
		Short:         "Run and manage the TapDev website",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv("SITE_CONFIG"), "Path to the YAML config file")

	root.AddCommand(
		newServeCommand(opts),
		newSEOCommand(opts),
		newInjectionCommand(opts),
		newPreviewCommand(opts),
		newHashPasswordCommand(),
	)
	return root
}

func (o *rootOptions) loadConfig() (site.Config, error) {
	cfg, err := site.LoadConfig(o.configPath)
	if err != nil {
		return site.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// buildModule loads the config and assembles the runtime. Callers close it.
func (o *rootOptions) buildModule() (*site.Module, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	module, err := moduleBuilder(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialise site: %w", err)
	}
	return module, nil
}
