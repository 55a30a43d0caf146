// Package placeholder turns interpolation variables and inline markup found
// in plain strings into inline codes.
package placeholder

import (
	"regexp"
	"strings"

	"kitmerge/internal/resource"
)

// Code types assigned to detected placeholders.
const (
	TypeVariable = "var"
	TypeIndex    = "index"
	TypePrintf   = "printf"
	TypePercent  = "percent"
)

// varMatch stores a detected placeholder position.
type varMatch struct {
	start, end int
	value      string
	tagType    resource.TagType
	typ        string
}

type pattern struct {
	re  *regexp.Regexp
	typ string
}

// patterns to detect interpolation variables in UI strings.
var patterns = []pattern{
	{regexp.MustCompile(`\$\{[a-zA-Z_][a-zA-Z0-9_]*\}`), TypeVariable},         // ${value}
	{regexp.MustCompile(`\{[0-9]+\}`), TypeIndex},                              // {0}, {1}
	{regexp.MustCompile(`%[-+0-9]*\.?[0-9]*[dsfieEgGxXoubcpq]`), TypePrintf}, // %d, %s, %f, %2d, etc.
	{regexp.MustCompile(`%%`), TypePercent},                                    // escaped percent literal
}

// tagPattern matches simple inline markup such as <b>, </b> and <br/>.
var tagPattern = regexp.MustCompile(`</?([a-zA-Z][a-zA-Z0-9]*)(?:\s[^<>]*)?/?>`)

// Options selects what is detected.
type Options struct {
	// Tags also turns inline markup into paired codes.
	Tags bool
}

// ToFragment converts text into a fragment where every detected placeholder is a code.
func ToFragment(text string, opts Options) *resource.Fragment {
	matches := detect(text, opts)
	f := resource.NewFragment("")
	pos := 0
	for _, m := range matches {
		f.Append(text[pos:m.start])
		code := f.AppendCode(m.tagType, m.typ, m.value)
		code.DisplayText = m.value
		pos = m.end
	}
	f.Append(text[pos:])
	return f
}

// Count returns the number of placeholders found in text.
func Count(text string, opts Options) int {
	return len(detect(text, opts))
}

func detect(text string, opts Options) []varMatch {
	var allMatches []varMatch
	for _, p := range patterns {
		locs := p.re.FindAllStringIndex(text, -1)
		for _, loc := range locs {
			allMatches = append(allMatches, varMatch{
				start:   loc[0],
				end:     loc[1],
				value:   text[loc[0]:loc[1]],
				tagType: resource.TagStandalone,
				typ:     p.typ,
			})
		}
	}
	if opts.Tags {
		for _, loc := range tagPattern.FindAllStringSubmatchIndex(text, -1) {
			value := text[loc[0]:loc[1]]
			allMatches = append(allMatches, varMatch{
				start:   loc[0],
				end:     loc[1],
				value:   value,
				tagType: tagTypeOf(value),
				typ:     strings.ToLower(text[loc[2]:loc[3]]),
			})
		}
	}

	if len(allMatches) == 0 {
		return nil
	}

	// Sort by position to ensure deterministic ordering.
	sortVarMatches(allMatches)

	// Remove overlapping matches (keep the first/longest).
	var filtered []varMatch
	lastEnd := -1
	for _, m := range allMatches {
		if m.start >= lastEnd {
			filtered = append(filtered, m)
			lastEnd = m.end
		}
	}
	return filtered
}

func tagTypeOf(tag string) resource.TagType {
	switch {
	case strings.HasPrefix(tag, "</"):
		return resource.TagClosing
	case strings.HasSuffix(tag, "/>"):
		return resource.TagStandalone
	default:
		return resource.TagOpening
	}
}

// sortVarMatches sorts by start position, then by length (descending) for overlaps.
func sortVarMatches(matches []varMatch) {
	for i := 1; i < len(matches); i++ {
		key := matches[i]
		j := i - 1
		for j >= 0 && (matches[j].start > key.start ||
			(matches[j].start == key.start && (matches[j].end-matches[j].start) < (key.end-key.start))) {
			matches[j+1] = matches[j]
			j--
		}
		matches[j+1] = key
	}
}
