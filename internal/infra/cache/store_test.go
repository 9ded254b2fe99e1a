package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sicat/internal/domain"
)

func testCatalog() domain.Catalog {
	return domain.Catalog{
		"samtools": {
			"1.2": {
				"h87a2e9c_2": {
					Filename:   "samtools:1.2--h87a2e9c_2",
					SizeBytes:  1024,
					ModifiedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
				},
				"": {
					Filename:   "samtools:1.2",
					SizeBytes:  512,
					ModifiedAt: time.Date(2023, 6, 23, 10, 8, 4, 0, time.UTC),
				},
			},
		},
		"bwa": {
			"0.7.17": {
				"hed695b0_7": {
					Filename:   "bwa:0.7.17--hed695b0_7",
					SizeBytes:  2048,
					ModifiedAt: time.Date(2022, 3, 1, 8, 0, 0, 0, time.UTC),
				},
			},
		},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(zap.NewNop(), filepath.Join(t.TempDir(), "images.db"))
	images := testCatalog()
	builtAt := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(context.Background(), images, builtAt))

	loaded, loadedBuiltAt, err := store.Load(context.Background())
	require.NoError(t, err)
	require.True(t, builtAt.Equal(loadedBuiltAt))
	if diff := cmp.Diff(images, loaded); diff != "" {
		t.Fatalf("catalog mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := NewStore(zap.NewNop(), filepath.Join(t.TempDir(), "images.db"))
	_, _, err := store.Load(context.Background())
	require.ErrorIs(t, err, ErrNoSnapshot)
}

func TestStoreSaveOverwrites(t *testing.T) {
	store := NewStore(zap.NewNop(), filepath.Join(t.TempDir(), "images.db"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testCatalog(), time.Now()))
	require.NoError(t, store.Save(ctx, domain.Catalog{
		"minimap2": {
			"2.24": {
				"h5bf99c6_0": {
					Filename:   "minimap2:2.24--h5bf99c6_0",
					SizeBytes:  99,
					ModifiedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
				},
			},
		},
	}, time.Now()))

	loaded, _, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Contains(t, loaded, "minimap2")
}

func TestStoreLoadCorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "images.db")
	require.NoError(t, os.WriteFile(path, []byte("not a bolt file"), 0o600))

	store := NewStore(zap.NewNop(), path)
	_, _, err := store.Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoSnapshot)
}

func TestStoreSaveCreatesCacheDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "images.db")
	store := NewStore(zap.NewNop(), path)
	require.NoError(t, store.Save(context.Background(), testCatalog(), time.Now()))

	_, err := os.Stat(path)
	require.NoError(t, err)
}
