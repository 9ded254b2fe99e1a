package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd(opts *cliOptions) *cobra.Command {
	var (
		format  string
		output  string
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump the full catalog snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unknown export format: %q", format)
			}
			application, err := opts.buildApp()
			if err != nil {
				return err
			}

			out := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer func() { _ = f.Close() }()
				out = f
			}
			return application.Export(cmd.Context(), out, format, refresh)
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "export format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to FILE instead of stdout")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "rebuild the catalog even if the cache is fresh")

	return cmd
}
