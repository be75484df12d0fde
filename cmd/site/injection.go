package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var errInjectionDisabled = errors.New("injection feature is disabled")

func newInjectionCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "injection",
		Short: "Inspect code injection settings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the persisted code injection settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, err := opts.buildModule()
			if err != nil {
				return err
			}
			defer module.Close()

			svc := module.Injection()
			if svc == nil {
				return errInjectionDisabled
			}
			persisted, err := svc.Persisted(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd, persisted)
		},
	})
	return cmd
}
