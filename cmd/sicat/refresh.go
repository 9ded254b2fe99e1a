package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRefreshCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Rebuild the catalog cache from the listing source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := opts.buildApp()
			if err != nil {
				return err
			}
			images, err := application.Images(cmd.Context(), true)
			if err != nil {
				return err
			}
			fmt.Printf("catalog rebuilt: %d tools, %d images\n", len(images), images.ImageCount())
			return nil
		},
	}
}
