package domain

import (
	"sort"
	"time"
)

// ImageInfo is the catalog leaf describing one image file from the listing.
type ImageInfo struct {
	Filename   string    `json:"filename"`
	SizeBytes  int64     `json:"sizeBytes"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// VersionVariants maps a variant string to its image info.
type VersionVariants map[string]ImageInfo

// ToolVersions maps a version string to its variants.
type ToolVersions map[string]VersionVariants

// Catalog indexes every known image, keyed tool -> version -> variant.
// The maps carry no ordering; queries impose order explicitly.
type Catalog map[string]ToolVersions

// ToolNames returns the catalog's tool names in sorted order.
func (c Catalog) ToolNames() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ImageCount returns the total number of images across all tools.
func (c Catalog) ImageCount() int {
	count := 0
	for _, versions := range c {
		for _, variants := range versions {
			count += len(variants)
		}
	}
	return count
}

// ImageRecord is one query result row.
type ImageRecord struct {
	Tool         string    `json:"tool"`
	Version      string    `json:"version"`
	Variant      string    `json:"variant,omitempty"`
	Build        int       `json:"build"`
	VariantLabel string    `json:"variantLabel,omitempty"`
	SizeBytes    int64     `json:"sizeBytes"`
	ModifiedAt   time.Time `json:"modifiedAt"`
	Path         string    `json:"path"`
}

// SelectMode controls which records of a tool survive a query.
type SelectMode int

const (
	// SelectDefault keeps only records belonging to the tool's latest version.
	SelectDefault SelectMode = iota
	// SelectAll keeps every version and variant.
	SelectAll
	// SelectLatest keeps the single newest record per tool.
	SelectLatest
)

// SortMode controls record ordering within and across tools.
type SortMode int

const (
	// SortVersion orders by version key, then build number.
	SortVersion SortMode = iota
	// SortModified orders by modification time.
	SortModified
	// SortSize orders by image size in bytes.
	SortSize
)

// QueryParams are the inputs the query engine accepts.
type QueryParams struct {
	// Patterns are tool name patterns; * matches any substring. Empty means all.
	Patterns []string
	// VersionFilter keeps versions equal to the filter or under "filter.".
	VersionFilter string
	Select        SelectMode
	Sort          SortMode
}
