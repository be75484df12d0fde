package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSEOCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seo",
		Short: "Inspect SEO configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "resolve <path>",
			Short: "Print the resolved SEO configuration for a path",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				module, err := opts.buildModule()
				if err != nil {
					return err
				}
				defer module.Close()

				resolved := module.SEO().Resolve(cmd.Context(), args[0])
				return writeJSON(cmd, resolved)
			},
		},
		&cobra.Command{
			Use:   "routes",
			Short: "List the registered page routes",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				module, err := opts.buildModule()
				if err != nil {
					return err
				}
				defer module.Close()

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "PATH\tNAME")
				for _, route := range module.Routes() {
					fmt.Fprintf(tw, "%s\t%s\n", route.Path, route.Name)
				}
				return tw.Flush()
			},
		},
	)
	return cmd
}

func writeJSON(cmd *cobra.Command, value any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
