// Package app wires the listing source, cache store and query engine
// into the operations the CLI exposes.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"sicat/internal/domain"
	"sicat/internal/infra/cache"
	"sicat/internal/infra/catalog"
	"sicat/internal/infra/config"
	"sicat/internal/infra/listing"
	"sicat/internal/infra/query"
)

type App struct {
	logger  *zap.Logger
	cfg     config.Config
	store   *cache.Store
	builder *catalog.Builder
	engine  *query.Engine
}

func New(logger *zap.Logger, cfg config.Config) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		logger:  logger,
		cfg:     cfg,
		store:   cache.NewStore(logger, cfg.CachePath),
		builder: catalog.NewBuilder(logger),
		engine:  query.NewEngine(logger, cfg.MountRoot, cfg.ImageSubdir),
	}
}

// Images returns the catalog, served from the cache when it is fresh
// and no refresh was forced. A stale, missing or unreadable snapshot
// triggers a full rebuild; a failed snapshot write is logged but never
// fails the invocation.
func (a *App) Images(ctx context.Context, refresh bool) (domain.Catalog, error) {
	if !refresh {
		images, builtAt, err := a.store.Load(ctx)
		switch {
		case err == nil && time.Since(builtAt) <= a.cfg.CacheMaxAge:
			a.logger.Info("using cached catalog",
				zap.Time("built_at", builtAt),
				zap.Int("tools", len(images)))
			return images, nil
		case err == nil:
			a.logger.Info("cache snapshot is stale", zap.Time("built_at", builtAt))
		case errors.Is(err, cache.ErrNoSnapshot):
			a.logger.Info("no cache snapshot yet")
		default:
			a.logger.Warn("cache load failed, rebuilding", zap.Error(err))
		}
	}

	src := listing.Resolve(a.cfg.ImageDir, a.cfg.ListURL)
	a.logger.Info("building catalog", zap.String("source", src.Describe()))
	images, err := a.builder.Build(ctx, src)
	if err != nil {
		return nil, err
	}

	if err := a.store.Save(ctx, images, time.Now()); err != nil {
		a.logger.Warn("cache save failed", zap.Error(err))
	}
	a.logger.Info("catalog built",
		zap.Int("tools", len(images)),
		zap.Int("images", images.ImageCount()))
	return images, nil
}

type SearchConfig struct {
	Params  domain.QueryParams
	Refresh bool
}

// Search resolves the catalog and evaluates the query against it.
func (a *App) Search(ctx context.Context, sc SearchConfig) ([]domain.ImageRecord, error) {
	images, err := a.Images(ctx, sc.Refresh)
	if err != nil {
		return nil, err
	}

	result, err := a.engine.Run(images, sc.Params)
	if err != nil {
		return nil, err
	}

	tools := make([]string, 0, len(result.Latest))
	for tool := range result.Latest {
		tools = append(tools, tool)
	}
	sort.Strings(tools)
	for _, tool := range tools {
		a.logger.Info("latest version detected",
			zap.String("tool", tool),
			zap.String("version", result.Latest[tool]))
	}
	a.logger.Info("query finished", zap.Int("matches", len(result.Records)))
	return result.Records, nil
}

// Export writes the whole catalog snapshot to w as JSON or YAML.
func (a *App) Export(ctx context.Context, w io.Writer, format string, refresh bool) error {
	images, err := a.Images(ctx, refresh)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(images)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer func() { _ = enc.Close() }()
		return enc.Encode(images)
	default:
		return fmt.Errorf("unknown export format: %q", format)
	}
}
