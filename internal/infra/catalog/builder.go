// Package catalog builds the image catalog from a listing scan.
package catalog

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"sicat/internal/domain"
	"sicat/internal/infra/grammar"
	"sicat/internal/infra/listing"
)

const maxLineBytes = 1 << 20

type Builder struct {
	logger *zap.Logger
}

func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		return &Builder{logger: zap.NewNop()}
	}
	return &Builder{logger: logger.Named("catalog")}
}

// Build consumes the full listing once and accumulates the three-level
// catalog. Malformed lines and unmatched filenames are skipped without
// aborting the scan; a listing that cannot be read at all is fatal.
func (b *Builder) Build(ctx context.Context, src listing.Source) (domain.Catalog, error) {
	reader, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open listing: %w", err)
	}
	defer func() { _ = reader.Close() }()

	images := domain.Catalog{}
	var total, skipped int

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		total++
		filename, info, ok := parseLine(scanner.Text())
		if !ok {
			skipped++
			continue
		}
		match, ok := grammar.Parse(filename)
		if !ok {
			skipped++
			continue
		}
		versions := images[match.Tool]
		if versions == nil {
			versions = domain.ToolVersions{}
			images[match.Tool] = versions
		}
		variants := versions[match.Version]
		if variants == nil {
			variants = domain.VersionVariants{}
			versions[match.Version] = variants
		}
		// Last line wins on duplicate tool/version/variant keys.
		variants[match.Variant] = info
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read listing: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.logger.Debug("listing scanned",
		zap.Int("lines", total),
		zap.Int("skipped", skipped),
		zap.Int("tools", len(images)))
	return images, nil
}

// parseLine splits one listing line into its filename and image info.
// Lines with fewer than 4 fields, a bad size or a bad timestamp are
// rejected. Fractional seconds on the time field are dropped.
func parseLine(line string) (string, domain.ImageInfo, bool) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return "", domain.ImageInfo{}, false
	}
	size, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || size < 0 {
		return "", domain.ImageInfo{}, false
	}
	clock, _, _ := strings.Cut(fields[3], ".")
	modified, err := time.Parse(domain.ListingTimeLayout, fields[2]+" "+clock)
	if err != nil {
		return "", domain.ImageInfo{}, false
	}
	return fields[0], domain.ImageInfo{
		Filename:   fields[0],
		SizeBytes:  size,
		ModifiedAt: modified,
	}, true
}
