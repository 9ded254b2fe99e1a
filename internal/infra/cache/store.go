// Package cache persists catalog snapshots across invocations.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"sicat/internal/domain"
)

const (
	imagesBucket = "images"
	metaBucket   = "meta"
	builtAtKey   = "built_at"
)

// ErrNoSnapshot reports that no usable snapshot exists; the caller is
// expected to rebuild from the listing source.
var ErrNoSnapshot = errors.New("no catalog snapshot")

// Store keeps one catalog snapshot in a bbolt file: an images bucket
// keyed by tool with JSON-encoded version maps, and a meta bucket
// holding the snapshot build time as an RFC 3339 string. Concurrent
// invocations racing to rewrite the snapshot are benign; the last
// writer wins.
type Store struct {
	logger *zap.Logger
	path   string
}

func NewStore(logger *zap.Logger, path string) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{logger: logger.Named("cache"), path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the snapshot and its build time. A missing file or missing
// buckets yield ErrNoSnapshot; a corrupt snapshot is an error the caller
// recovers from by rebuilding.
func (s *Store) Load(ctx context.Context) (domain.Catalog, time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, time.Time{}, err
	}
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil, time.Time{}, ErrNoSnapshot
		}
		return nil, time.Time{}, fmt.Errorf("stat cache: %w", err)
	}

	db, err := bolt.Open(s.path, 0o600, &bolt.Options{Timeout: time.Second, ReadOnly: true})
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("open cache: %w", err)
	}
	defer func() { _ = db.Close() }()

	var (
		images  domain.Catalog
		builtAt time.Time
	)
	err = db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket([]byte(metaBucket))
		if meta == nil {
			return ErrNoSnapshot
		}
		raw := meta.Get([]byte(builtAtKey))
		if raw == nil {
			return ErrNoSnapshot
		}
		ts, err := time.Parse(time.RFC3339, string(raw))
		if err != nil {
			return fmt.Errorf("parse snapshot build time: %w", err)
		}
		builtAt = ts

		bucket := tx.Bucket([]byte(imagesBucket))
		if bucket == nil {
			return ErrNoSnapshot
		}
		images = domain.Catalog{}
		return bucket.ForEach(func(k, v []byte) error {
			var versions domain.ToolVersions
			if err := json.Unmarshal(v, &versions); err != nil {
				return fmt.Errorf("decode tool %q: %w", string(k), err)
			}
			images[string(k)] = versions
			return nil
		})
	})
	if err != nil {
		return nil, time.Time{}, err
	}
	return images, builtAt, nil
}

// Save replaces the stored snapshot in a single transaction.
func (s *Store) Save(ctx context.Context, images domain.Catalog, builtAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure cache dir: %w", err)
	}

	db, err := bolt.Open(s.path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer func() { _ = db.Close() }()

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{imagesBucket, metaBucket} {
			if err := tx.DeleteBucket([]byte(name)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return fmt.Errorf("reset bucket %s: %w", name, err)
			}
		}

		bucket, err := tx.CreateBucket([]byte(imagesBucket))
		if err != nil {
			return fmt.Errorf("create images bucket: %w", err)
		}
		for tool, versions := range images {
			data, err := json.Marshal(versions)
			if err != nil {
				return fmt.Errorf("encode tool %q: %w", tool, err)
			}
			if err := bucket.Put([]byte(tool), data); err != nil {
				return fmt.Errorf("store tool %q: %w", tool, err)
			}
		}

		meta, err := tx.CreateBucket([]byte(metaBucket))
		if err != nil {
			return fmt.Errorf("create meta bucket: %w", err)
		}
		return meta.Put([]byte(builtAtKey), []byte(builtAt.UTC().Format(time.RFC3339)))
	})
	if err != nil {
		return err
	}

	s.logger.Debug("snapshot saved", zap.String("path", s.path), zap.Int("tools", len(images)))
	return nil
}
