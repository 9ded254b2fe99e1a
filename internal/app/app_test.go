package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sicat/internal/domain"
	"sicat/internal/infra/config"
)

// newTestApp points the app at a temp image directory and temp cache.
func newTestApp(t *testing.T, files ...string) (*App, string) {
	t.Helper()
	imageDir := t.TempDir()
	for _, name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(imageDir, name), []byte("image-data"), 0o644))
	}
	cfg := config.Config{
		ListURL:     "http://example.invalid/list.txt",
		ImageDir:    imageDir,
		MountRoot:   "/cvmfs/depot.example.org",
		ImageSubdir: "all",
		CachePath:   filepath.Join(t.TempDir(), "images.db"),
		CacheMaxAge: time.Hour,
	}
	return New(zap.NewNop(), cfg), imageDir
}

func TestImagesBuildsFromDirectory(t *testing.T) {
	app, _ := newTestApp(t, "samtools:1.2--h87a2e9c_2", "bwa:0.7.17--hed695b0_7")

	images, err := app.Images(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, images, 2)
	require.Contains(t, images, "samtools")
	require.Contains(t, images, "bwa")
}

func TestImagesServedFromCacheUntilStale(t *testing.T) {
	app, imageDir := newTestApp(t, "samtools:1.2--h87a2e9c_2")
	ctx := context.Background()

	first, err := app.Images(ctx, false)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A new file appears, but the fresh snapshot still answers.
	require.NoError(t, os.WriteFile(filepath.Join(imageDir, "bwa:0.7.17--hed695b0_7"), []byte("x"), 0o644))
	cached, err := app.Images(ctx, false)
	require.NoError(t, err)
	require.Len(t, cached, 1)

	// A forced refresh sees it.
	refreshed, err := app.Images(ctx, true)
	require.NoError(t, err)
	require.Len(t, refreshed, 2)
}

func TestImagesRebuildsOnCorruptCache(t *testing.T) {
	app, _ := newTestApp(t, "samtools:1.2--h87a2e9c_2")
	require.NoError(t, os.WriteFile(app.store.Path(), []byte("garbage"), 0o600))

	images, err := app.Images(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, images, 1)
}

func TestImagesFailsWhenNoSourceReadable(t *testing.T) {
	cfg := config.Config{
		ListURL:     "http://127.0.0.1:1/list.txt",
		ImageDir:    filepath.Join(t.TempDir(), "absent"),
		MountRoot:   "/cvmfs/depot.example.org",
		ImageSubdir: "all",
		CachePath:   filepath.Join(t.TempDir(), "images.db"),
		CacheMaxAge: time.Hour,
	}
	app := New(zap.NewNop(), cfg)

	_, err := app.Images(context.Background(), false)
	require.Error(t, err)
}

func TestSearchEndToEnd(t *testing.T) {
	app, _ := newTestApp(t,
		"samtools:1.2--h87a2e9c_2",
		"samtools:1.9--h91eb985_2",
		"bwa:0.7.17--hed695b0_7",
	)

	records, err := app.Search(context.Background(), SearchConfig{
		Params: domain.QueryParams{Patterns: []string{"samtools"}, Select: domain.SelectAll},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "1.2", records[0].Version)
	require.Equal(t, "1.9", records[1].Version)
	require.Equal(t, "/cvmfs/depot.example.org/all/samtools:1.2--h87a2e9c_2", records[0].Path)
}

func TestExportJSONRoundTrips(t *testing.T) {
	app, _ := newTestApp(t, "samtools:1.2--h87a2e9c_2")

	var buf bytes.Buffer
	require.NoError(t, app.Export(context.Background(), &buf, "json", false))

	var images domain.Catalog
	require.NoError(t, json.Unmarshal(buf.Bytes(), &images))
	require.Contains(t, images, "samtools")
	require.Equal(t, "samtools:1.2--h87a2e9c_2", images["samtools"]["1.2"]["h87a2e9c_2"].Filename)
}

func TestExportUnknownFormat(t *testing.T) {
	app, _ := newTestApp(t, "samtools:1.2--h87a2e9c_2")
	err := app.Export(context.Background(), &bytes.Buffer{}, "xml", false)
	require.Error(t, err)
}
