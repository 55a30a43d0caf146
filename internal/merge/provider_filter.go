package merge

import (
	"context"
	"fmt"

	"kitmerge/internal/filter"
	"kitmerge/internal/kit"
	"kitmerge/internal/resource"
)

// FilterProvider re-runs the document's filter over the copy of the
// original stored in the kit. Output goes through the same filter's writer.
type FilterProvider struct {
	registry *filter.Registry
	manifest *kit.Manifest
}

func NewFilterProvider(registry *filter.Registry, manifest *kit.Manifest) *FilterProvider {
	return &FilterProvider{registry: registry, manifest: manifest}
}

func (p *FilterProvider) Open(ctx context.Context, info kit.MergingInfo, trgLoc resource.LocaleID) (Stream, error) {
	f, err := p.registry.Create(info.FilterID)
	if err != nil {
		return nil, err
	}
	in := filter.Input{
		Path:         p.manifest.OriginalPath(info),
		Name:         info.RelativeInputPath,
		Encoding:     info.InputEncoding,
		SourceLocale: p.manifest.SourceLocale,
		TargetLocale: trgLoc,
		Params:       info.FilterParameters,
	}
	if err := f.Open(ctx, in); err != nil {
		f.Close()
		return nil, err
	}
	return &filterStream{f: f}, nil
}

type filterStream struct {
	f      filter.Filter
	closed bool
}

func (s *filterStream) Next() (*resource.Event, error) {
	return s.f.Next()
}

func (s *filterStream) Writer(*resource.StartDocument) (filter.Writer, error) {
	return s.f.CreateWriter(), nil
}

func (s *filterStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.f.Close(); err != nil {
		return fmt.Errorf("close %s filter: %w", s.f.ID(), err)
	}
	return nil
}
