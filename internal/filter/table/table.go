// Package table reads and writes tab-separated data files. The first column
// holds the row key; every other cell is a unit.
package table

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"kitmerge/internal/charset"
	"kitmerge/internal/filter"
	"kitmerge/internal/placeholder"
	"kitmerge/internal/resource"
	"kitmerge/internal/skeleton"
)

// ID is the format identifier of the filter.
const ID = "okf_table"

// Filter extracts cells from tab-separated files.
type Filter struct {
	filter.EventQueue
}

func New() *Filter { return &Filter{} }

func (f *Filter) ID() string { return ID }

func (f *Filter) MimeType() string { return resource.MimeTable }

func (f *Filter) Extensions() []string { return []string{".tsv", ".tab"} }

func (f *Filter) CreateWriter() filter.Writer { return skeleton.NewWriter() }

func (f *Filter) Close() error {
	f.Reset()
	return nil
}

// Open parses the file. Parameters: header=true keeps the first row as
// column names, sep sets the separator (tab by default), tags=true turns
// inline markup into codes.
func (f *Filter) Open(ctx context.Context, in filter.Input) error {
	text, err := charset.ReadFile(in.Path, in.Encoding)
	if err != nil {
		return fmt.Errorf("open table file: %w", err)
	}
	f.Reset()
	params := filter.ParseParams(in.Params)
	sep := params.String("sep", "\t")
	if sep == "" {
		sep = "\t"
	}
	hasHeader := params.Bool("header", false)
	opts := placeholder.Options{Tags: params.Bool("tags", false)}
	b := filter.NewBuilder(&f.EventQueue, filter.NewStartDocument(f, in, text))

	var columns []string
	for _, l := range filter.SplitLines(text) {
		if strings.TrimSpace(l.Content) == "" {
			b.AddSkeleton(l.Content + l.Break)
			continue
		}

		cols := strings.Split(l.Content, sep)
		if hasHeader && columns == nil {
			columns = cols
			b.AddSkeleton(l.Content + l.Break)
			continue
		}
		if len(cols) < 2 {
			b.AddSkeleton(l.Content + l.Break)
			continue
		}

		key := cols[0]
		for colIdx := 1; colIdx < len(cols); colIdx++ {
			before := ""
			if colIdx == 1 {
				before = key + sep
			}
			after := sep
			if colIdx == len(cols)-1 {
				after = l.Break
			}

			u := resource.NewUnit("", "")
			u.Source = resource.NewContainerFromFragment(placeholder.ToFragment(cols[colIdx], opts))
			u.MimeType = resource.MimeTable
			column := strconv.Itoa(colIdx)
			if colIdx < len(columns) && columns[colIdx] != "" {
				column = columns[colIdx]
			}
			u.Name = key + "/" + column
			u.Annotations = map[string]string{"key": key, "column": column}
			b.AddUnit(u, before, after)
		}
	}
	b.End()
	return nil
}

// LooksTabular reports whether most non-empty lines of a sample share the
// same number of tabs.
func LooksTabular(text string) bool {
	lines := filter.SplitLines(text)
	if len(lines) < 2 {
		return false
	}

	tabCounts := make(map[int]int)
	sampleSize := min(len(lines), 20)
	nonEmptyLines := 0

	for i := 0; i < sampleSize; i++ {
		line := lines[i].Content
		if strings.TrimSpace(line) == "" {
			continue
		}
		nonEmptyLines++
		count := strings.Count(line, "\t")
		if count > 0 {
			tabCounts[count]++
		}
	}

	if nonEmptyLines == 0 {
		return false
	}

	// Find the most common tab count.
	maxCount := 0
	for _, c := range tabCounts {
		if c > maxCount {
			maxCount = c
		}
	}

	// If >60% of non-empty lines share the same tab count, it's a table.
	return float64(maxCount)/float64(nonEmptyLines) > 0.6
}
