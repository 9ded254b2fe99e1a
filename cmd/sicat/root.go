package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sicat/internal/app"
	"sicat/internal/infra/config"
)

type cliOptions struct {
	configPath string
	cachePath  string
	imageDir   string
	listURL    string
	quiet      bool
	logger     *zap.Logger
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "sicat",
		Short:         "Search the flat singularity image depot by tool, version and build",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			logger, err := newLogger(opts.quiet)
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = opts.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "load configuration from a YAML file")
	root.PersistentFlags().StringVar(&opts.cachePath, "cache", "", "override the catalog cache path")
	root.PersistentFlags().StringVar(&opts.imageDir, "image-dir", "", "override the local image directory")
	root.PersistentFlags().StringVar(&opts.listURL, "list-url", "", "override the remote listing URL")
	root.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress informational output")

	root.AddCommand(
		newSearchCmd(opts),
		newRefreshCmd(opts),
		newExportCmd(opts),
	)

	return root
}

// newLogger builds the stderr logger; --quiet raises the level so only
// warnings and errors surface while results stay on stdout.
func newLogger(quiet bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if quiet {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("invocation", uuid.NewString())), nil
}

// buildApp resolves configuration, applies flag overrides and wires the
// application.
func (o *cliOptions) buildApp() (*app.App, error) {
	cfg, err := config.NewLoader(o.logger).Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.cachePath != "" {
		cfg.CachePath = o.cachePath
	}
	if o.imageDir != "" {
		cfg.ImageDir = o.imageDir
	}
	if o.listURL != "" {
		cfg.ListURL = o.listURL
	}
	return app.New(o.logger, cfg), nil
}
