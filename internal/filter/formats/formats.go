// Package formats registers the document formats shipped with kitmerge.
package formats

import (
	"kitmerge/internal/filter"
	"kitmerge/internal/filter/ini"
	"kitmerge/internal/filter/table"
	"kitmerge/internal/filter/text"
	"kitmerge/internal/xliff"
)

// Registry returns a registry holding every built-in format.
func Registry() *filter.Registry {
	r := filter.NewRegistry()
	r.Register(ini.ID, func() filter.Filter { return ini.New() })
	r.Register(table.ID, func() filter.Filter { return table.New() })
	r.Register(text.ID, func() filter.Filter { return text.New() })
	r.Register(xliff.ID, func() filter.Filter { return xliff.NewFilter() })
	return r
}
