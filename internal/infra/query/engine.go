// Package query answers catalog queries: name/version filtering, latest
// selection and ordering of the resulting image records.
package query

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"sicat/internal/domain"
	"sicat/internal/infra/verkey"
)

type Engine struct {
	logger      *zap.Logger
	mountRoot   string
	imageSubdir string
}

func NewEngine(logger *zap.Logger, mountRoot, imageSubdir string) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		logger:      logger.Named("query"),
		mountRoot:   mountRoot,
		imageSubdir: imageSubdir,
	}
}

// Result carries the ordered records plus the latest version label
// detected per matched tool.
type Result struct {
	Records []domain.ImageRecord
	Latest  map[string]string
}

// Run evaluates params against the catalog. Tools are visited in sorted
// name order so output is deterministic regardless of map iteration.
func (e *Engine) Run(images domain.Catalog, params domain.QueryParams) (Result, error) {
	matcher, err := compilePatterns(params.Patterns)
	if err != nil {
		return Result{}, err
	}

	result := Result{Latest: map[string]string{}}
	for _, tool := range images.ToolNames() {
		if !matcher.MatchString(tool) {
			continue
		}
		records := e.expand(tool, images[tool], params.VersionFilter)
		if len(records) == 0 {
			continue
		}

		// Default ordering fixes the latest version for this tool.
		sortByVersion(records)
		latest := verkey.LatestLabel(records[len(records)-1].Version)
		result.Latest[tool] = latest

		sortRecords(records, params.Sort)
		records = selectRecords(records, latest, params.Select)
		result.Records = append(result.Records, records...)
	}

	sortCombined(result.Records, params.Sort)
	e.logger.Debug("query evaluated",
		zap.Int("tools", len(result.Latest)),
		zap.Int("records", len(result.Records)))
	return result, nil
}

// compilePatterns turns the wildcard patterns into one anchored,
// case-insensitive alternation. * matches any substring.
func compilePatterns(patterns []string) (*regexp.Regexp, error) {
	if len(patterns) == 0 {
		patterns = []string{"*"}
	}
	alternatives := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		alternatives = append(alternatives, strings.ReplaceAll(regexp.QuoteMeta(pattern), `\*`, ".*"))
	}
	matcher, err := regexp.Compile(`(?i)^(?:` + strings.Join(alternatives, "|") + `)$`)
	if err != nil {
		return nil, fmt.Errorf("compile name patterns: %w", err)
	}
	return matcher, nil
}

// expand builds one record per surviving version/variant. Versions and
// variants are visited in sorted key order so later stable sorts break
// ties deterministically.
func (e *Engine) expand(tool string, versions domain.ToolVersions, versionFilter string) []domain.ImageRecord {
	var records []domain.ImageRecord
	for _, version := range sortedKeys(versions) {
		if !versionMatches(version, versionFilter) {
			continue
		}
		variants := versions[version]
		for _, variant := range sortedKeys(variants) {
			info := variants[variant]
			label, build := verkey.SplitVariant(variant)
			records = append(records, domain.ImageRecord{
				Tool:         tool,
				Version:      version,
				Variant:      variant,
				Build:        build,
				VariantLabel: label,
				SizeBytes:    info.SizeBytes,
				ModifiedAt:   info.ModifiedAt,
				Path:         path.Join(e.mountRoot, e.imageSubdir, info.Filename),
			})
		}
	}
	return records
}

// versionMatches reports whether version equals filter or sits under
// "filter.". An empty filter matches everything.
func versionMatches(version, filter string) bool {
	if filter == "" {
		return true
	}
	return version == filter || strings.HasPrefix(version, filter+".")
}

func selectRecords(records []domain.ImageRecord, latest string, mode domain.SelectMode) []domain.ImageRecord {
	switch mode {
	case domain.SelectAll:
		return records
	case domain.SelectLatest:
		return records[len(records)-1:]
	default:
		kept := records[:0:0]
		for _, rec := range records {
			if versionMatches(rec.Version, latest) {
				kept = append(kept, rec)
			}
		}
		return kept
	}
}

func sortByVersion(records []domain.ImageRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return lessByVersion(records[i], records[j])
	})
}

func sortRecords(records []domain.ImageRecord, mode domain.SortMode) {
	switch mode {
	case domain.SortModified:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].ModifiedAt.Before(records[j].ModifiedAt)
		})
	case domain.SortSize:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].SizeBytes < records[j].SizeBytes
		})
	default:
		sortByVersion(records)
	}
}

// sortCombined applies the final display order across all tools,
// keyed tool-first so each tool's records stay grouped.
func sortCombined(records []domain.ImageRecord, mode domain.SortMode) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Tool != b.Tool {
			return a.Tool < b.Tool
		}
		switch mode {
		case domain.SortModified:
			return a.ModifiedAt.Before(b.ModifiedAt)
		case domain.SortSize:
			return a.SizeBytes < b.SizeBytes
		default:
			return lessByVersion(a, b)
		}
	})
}

// lessByVersion compares on the fresh version key, then build number.
func lessByVersion(a, b domain.ImageRecord) bool {
	if c := verkey.Compare(verkey.Key(a.Version), verkey.Key(b.Version)); c != 0 {
		return c < 0
	}
	return a.Build < b.Build
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
