// Package config resolves the tool configuration from defaults and an
// optional YAML config file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"sicat/internal/domain"
)

// Config is the resolved, validated configuration.
type Config struct {
	ListURL     string
	ImageDir    string
	MountRoot   string
	ImageSubdir string
	CachePath   string
	CacheMaxAge time.Duration
}

type rawConfig struct {
	ListURL            string `mapstructure:"listUrl"`
	ImageDir           string `mapstructure:"imageDir"`
	MountRoot          string `mapstructure:"mountRoot"`
	ImageSubdir        string `mapstructure:"imageSubdir"`
	CachePath          string `mapstructure:"cachePath"`
	CacheMaxAgeSeconds int    `mapstructure:"cacheMaxAgeSeconds"`
}

func newConfigViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listUrl", domain.DefaultListURL)
	v.SetDefault("mountRoot", domain.DefaultMountRoot)
	v.SetDefault("imageSubdir", domain.DefaultImageSubdir)
	v.SetDefault("cacheMaxAgeSeconds", domain.DefaultCacheMaxAgeSeconds)
}

type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		return &Loader{logger: zap.NewNop()}
	}
	return &Loader{logger: logger.Named("config")}
}

// Load reads path when given, otherwise resolves pure defaults. A
// missing explicit config file is an error; defaults never are.
func (l *Loader) Load(path string) (Config, error) {
	v := newConfigViper()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		l.logger.Debug("config file loaded", zap.String("path", path))
	}

	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return normalize(raw)
}

func normalize(raw rawConfig) (Config, error) {
	if raw.ListURL == "" {
		return Config{}, errors.New("listUrl must not be empty")
	}
	if raw.CacheMaxAgeSeconds <= 0 {
		return Config{}, errors.New("cacheMaxAgeSeconds must be positive")
	}

	cfg := Config{
		ListURL:     raw.ListURL,
		ImageDir:    raw.ImageDir,
		MountRoot:   raw.MountRoot,
		ImageSubdir: raw.ImageSubdir,
		CachePath:   raw.CachePath,
		CacheMaxAge: time.Duration(raw.CacheMaxAgeSeconds) * time.Second,
	}
	if cfg.ImageDir == "" {
		cfg.ImageDir = path.Join(cfg.MountRoot, cfg.ImageSubdir)
	}
	if cfg.CachePath == "" {
		resolved, err := defaultCachePath()
		if err != nil {
			return Config{}, err
		}
		cfg.CachePath = resolved
	}
	return cfg, nil
}

func defaultCachePath() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve user cache dir: %w", err)
	}
	return filepath.Join(base, "sicat", domain.DefaultCacheFileName), nil
}
