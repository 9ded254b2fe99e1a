// Package grammar extracts tool, version and variant from image filenames.
package grammar

import "regexp"

// Match holds the structured fields captured from an image filename.
type Match struct {
	Tool    string
	Version string
	Variant string
}

// The cascade is ordered most specific first; the first pattern that
// matches wins. The tool name is everything before the first colon, so
// the tool capture is non-greedy while the version capture is greedy.
var patterns = []*regexp.Regexp{
	// tool:version--variant
	regexp.MustCompile(`(?i)^(.+?):(.+)--(.+)$`),
	// tool:version-build where the trailing segment is purely numeric
	regexp.MustCompile(`(?i)^(.+?):(.+)-(\d+)$`),
	// tool:version
	regexp.MustCompile(`(?i)^(.+?):(.+)$`),
}

// Parse runs the pattern cascade over filename. The boolean reports
// whether any pattern matched; unmatched filenames carry no image.
func Parse(filename string) (Match, bool) {
	for _, re := range patterns {
		groups := re.FindStringSubmatch(filename)
		if groups == nil {
			continue
		}
		match := Match{Tool: groups[1], Version: groups[2]}
		if len(groups) > 3 {
			match.Variant = groups[3]
		}
		return match, true
	}
	return Match{}, false
}
