// Package ini reads and writes INI/config files. Every key=value pair is a
// unit; sections, comments and blank lines are skeleton.
package ini

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
const ID = "okf_ini"

// Filter extracts values from INI files.
type Filter struct {
	filter.EventQueue
}

func New() *Filter { return &Filter{} }

func (f *Filter) ID() string { return ID }

func (f *Filter) MimeType() string { return resource.MimeINI }

func (f *Filter) Extensions() []string { return []string{".ini", ".cfg"} }

func (f *Filter) CreateWriter() filter.Writer { return skeleton.NewWriter() }

func (f *Filter) Close() error {
	f.Reset()
	return nil
}

// Open parses the file. Parameters: tags=true turns inline markup into codes.
func (f *Filter) Open(ctx context.Context, in filter.Input) error {
	text, err := charset.ReadFile(in.Path, in.Encoding)
	if err != nil {
		return fmt.Errorf("open ini file: %w", err)
	}
	f.Reset()
	opts := placeholder.Options{Tags: filter.ParseParams(in.Params).Bool("tags", false)}
	b := filter.NewBuilder(&f.EventQueue, filter.NewStartDocument(f, in, text))

	currentSection := ""
	for _, l := range filter.SplitLines(text) {
		line := l.Content
		trimmed := strings.TrimSpace(line)

		// Empty lines and comments.
		if trimmed == "" || strings.HasPrefix(trimmed, ";") || strings.HasPrefix(trimmed, "#") {
			b.AddSkeleton(line + l.Break)
			continue
		}

		// Section header.
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			currentSection = trimmed[1 : len(trimmed)-1]
			b.AddSkeleton(line + l.Break)
			continue
		}

		// Key=Value pair.
		eqIdx := strings.Index(line, "=")
		if eqIdx < 0 {
			b.AddSkeleton(line + l.Break)
			continue
		}

		key := strings.TrimSpace(line[:eqIdx])
		lead, value, trail := filter.SplitSpace(line[eqIdx+1:])

		u := resource.NewUnit("", "")
		u.Source = resource.NewContainerFromFragment(placeholder.ToFragment(value, opts))
		u.MimeType = resource.MimeINI
		u.Name = key
		if currentSection != "" {
			u.Name = currentSection + "/" + key
		}
		u.Annotations = map[string]string{"section": currentSection, "key": key}
		b.AddUnit(u, line[:eqIdx+1]+lead, trail+l.Break)
	}
	b.End()
	return nil
}
