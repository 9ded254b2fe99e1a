package main

import (
	"github.com/spf13/cobra"

	"sicat/internal/app"
	"sicat/internal/domain"
)

func newSearchCmd(opts *cliOptions) *cobra.Command {
	var (
		version    string
		all        bool
		latest     bool
		byModified bool
		bySize     bool
		refresh    bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "search [pattern...]",
		Aliases: []string{"ls"},
		Short:   "List images whose tool name matches the given patterns",
		Long: `List catalog images by tool name pattern. Patterns may contain *
as a wildcard and are matched case-insensitively against the full tool
name; with no pattern every tool matches. By default only images of
each tool's latest version are shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := opts.buildApp()
			if err != nil {
				return err
			}

			params := domain.QueryParams{Patterns: args, VersionFilter: version}
			switch {
			case all:
				params.Select = domain.SelectAll
			case latest:
				params.Select = domain.SelectLatest
			}
			switch {
			case byModified:
				params.Sort = domain.SortModified
			case bySize:
				params.Sort = domain.SortSize
			}

			records, err := application.Search(cmd.Context(), app.SearchConfig{
				Params:  params,
				Refresh: refresh,
			})
			if err != nil {
				return err
			}
			return printRecords(records, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "restrict to this version or versions beneath it")
	cmd.Flags().BoolVar(&all, "all", false, "show every version and variant")
	cmd.Flags().BoolVar(&latest, "latest", false, "show only the single newest image per tool")
	cmd.Flags().BoolVar(&byModified, "modified", false, "sort by modification time")
	cmd.Flags().BoolVar(&bySize, "size", false, "sort by image size")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "rebuild the catalog even if the cache is fresh")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.MarkFlagsMutuallyExclusive("all", "latest")
	cmd.MarkFlagsMutuallyExclusive("modified", "size")

	return cmd
}
