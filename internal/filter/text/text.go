// Package text reads and writes plain-text files, one unit per non-blank line.
package text

import (
	"context"
	"fmt"
	"strings"

	"kitmerge/internal/charset"
	"kitmerge/internal/filter"
	"kitmerge/internal/placeholder"
	"kitmerge/internal/resource"
	"kitmerge/internal/skeleton"
)

// ID is the format identifier of the filter.
const ID = "okf_text"

type Filter struct {
	filter.EventQueue
}

func New() *Filter { return &Filter{} }

func (f *Filter) ID() string { return ID }

func (f *Filter) MimeType() string { return resource.MimeText }

func (f *Filter) Extensions() []string { return []string{".txt"} }

func (f *Filter) CreateWriter() filter.Writer { return skeleton.NewWriter() }

func (f *Filter) Close() error {
	f.Reset()
	return nil
}

func (f *Filter) Open(ctx context.Context, in filter.Input) error {
	content, err := charset.ReadFile(in.Path, in.Encoding)
	if err != nil {
		return fmt.Errorf("open txt file: %w", err)
	}
	f.Reset()
	opts := placeholder.Options{Tags: filter.ParseParams(in.Params).Bool("tags", false)}
	b := filter.NewBuilder(&f.EventQueue, filter.NewStartDocument(f, in, content))

	for lineNum, l := range filter.SplitLines(content) {
		if strings.TrimSpace(l.Content) == "" {
			b.AddSkeleton(l.Content + l.Break)
			continue
		}
		lead, body, trail := filter.SplitSpace(l.Content)
		u := resource.NewUnit("", "")
		u.Source = resource.NewContainerFromFragment(placeholder.ToFragment(body, opts))
		u.MimeType = resource.MimeText
		u.Name = fmt.Sprintf("line%d", lineNum+1)
		b.AddUnit(u, lead, trail+l.Break)
	}
	b.End()
	return nil
}
