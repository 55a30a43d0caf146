package merge

import (
	"context"
	"fmt"

	"kitmerge/internal/filter"
	"kitmerge/internal/kit"
	"kitmerge/internal/resource"
	"kitmerge/internal/skeleton"
)

// SkeletonProvider replays the event recording made at extraction time
// instead of parsing the original again. The writer is created from the
// filter id recorded in the StartDocument.
type SkeletonProvider struct {
	registry *filter.Registry
	manifest *kit.Manifest
}

func NewSkeletonProvider(registry *filter.Registry, manifest *kit.Manifest) *SkeletonProvider {
	return &SkeletonProvider{registry: registry, manifest: manifest}
}

func (p *SkeletonProvider) Open(ctx context.Context, info kit.MergingInfo, _ resource.LocaleID) (Stream, error) {
	r, err := skeleton.OpenReader(skeleton.PathFor(p.manifest.SkeletonDirectory(), info.RelativeInputPath))
	if err != nil {
		return nil, err
	}
	return &replayStream{r: r, registry: p.registry}, nil
}

type replayStream struct {
	r        *skeleton.Reader
	registry *filter.Registry
}

func (s *replayStream) Next() (*resource.Event, error) {
	return s.r.Next()
}

func (s *replayStream) Writer(sd *resource.StartDocument) (filter.Writer, error) {
	if sd == nil || sd.FilterID == "" {
		return nil, fmt.Errorf("%w: no filter id recorded", ErrNoStartDocument)
	}
	return s.registry.CreateWriter(sd.FilterID)
}

func (s *replayStream) Close() error {
	return s.r.Close()
}
