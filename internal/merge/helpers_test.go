package merge

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"kitmerge/internal/filter"
	"kitmerge/internal/kit"
	"kitmerge/internal/resource"
	"kitmerge/internal/skeleton"
)

const (
	srcLoc resource.LocaleID = "en"
	trgLoc resource.LocaleID = "fr"
)

// memStream serves events from memory.
type memStream struct {
	events []*resource.Event
	pos    int
	closed int
	writer filter.Writer
}

func (s *memStream) Next() (*resource.Event, error) {
	if s.pos >= len(s.events) {
		return nil, io.EOF
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, nil
}

func (s *memStream) Close() error {
	s.closed++
	return nil
}

func (s *memStream) Writer(*resource.StartDocument) (filter.Writer, error) {
	return s.writer, nil
}

type memProvider struct {
	stream *memStream
	err    error
}

func (p *memProvider) Open(context.Context, kit.MergingInfo, resource.LocaleID) (Stream, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.stream, nil
}

// recordingWriter renders the output in memory and keeps the events it got.
type recordingWriter struct {
	*skeleton.Writer
	buf    bytes.Buffer
	events []*resource.Event
}

func newRecordingWriter() *recordingWriter {
	w := &recordingWriter{Writer: skeleton.NewWriter()}
	w.Writer.SetOutputWriter(&w.buf)
	return w
}

func (w *recordingWriter) HandleEvent(ev *resource.Event) error {
	w.events = append(w.events, ev)
	return w.Writer.HandleEvent(ev)
}

func (w *recordingWriter) unit(id string) *resource.Unit {
	for _, ev := range w.events {
		if u := ev.Unit(); u != nil && u.ID == id {
			return u
		}
	}
	return nil
}

func startDoc(sd *resource.StartDocument) *resource.Event {
	if sd == nil {
		sd = &resource.StartDocument{ID: "sd", Locale: srcLoc, FilterID: "okf_ini"}
	}
	return resource.NewStartDocumentEvent(sd)
}

func endDoc() *resource.Event {
	return resource.NewEndingEvent(resource.EventEndDocument, &resource.Ending{ID: "end"})
}

// oriUnit makes an original unit rendered as "<id>=<content>\n".
func oriUnit(id string, src *resource.Fragment) *resource.Event {
	u := resource.NewUnit(id, "")
	u.Source = resource.NewContainerFromFragment(src)
	u.Skeleton = resource.NewSkeleton(id + "=")
	u.Skeleton.AddContentPlaceholder()
	u.Skeleton.Add("\n")
	return resource.NewUnitEvent(u)
}

func oriText(id, text string) *resource.Event {
	return oriUnit(id, resource.NewFragment(text))
}

// traUnit makes a translated unit with the given target, or none when trg is nil.
func traUnit(id, src string, trg *resource.Container) *resource.Event {
	u := resource.NewUnit(id, src)
	if trg != nil {
		u.SetTarget(trgLoc, trg)
	}
	return resource.NewUnitEvent(u)
}

func approved(c *resource.Container) *resource.Container {
	c.SetProperty(resource.PropertyApproved, "yes")
	return c
}

type fixture struct {
	manifest *kit.Manifest
	info     kit.MergingInfo
	original *memStream
	writer   *recordingWriter
	opts     Options
}

func newFixture(t *testing.T, original ...*resource.Event) *fixture {
	t.Helper()
	nop := zerolog.Nop()
	w := newRecordingWriter()
	return &fixture{
		manifest: kit.New(t.TempDir(), srcLoc, trgLoc),
		info: kit.MergingInfo{
			DocID:              1,
			ExtractionType:     kit.ExtractionXLIFF,
			RelativeInputPath:  "app.ini",
			RelativeTargetPath: "app.ini",
			FilterID:           "okf_ini",
		},
		original: &memStream{events: original, writer: w},
		writer:   w,
		opts:     Options{Logger: &nop},
	}
}

func (f *fixture) merger() *Merger {
	return New(f.manifest, &memProvider{stream: f.original}, f.opts)
}

func (f *fixture) merge(t *testing.T, translated ...*resource.Event) Result {
	t.Helper()
	res, err := f.merger().MergeDocument(context.Background(), f.info, &memStream{events: translated})
	require.NoError(t, err)
	return res
}

// segmentedContainer builds a container whose segments are separated by one space.
func segmentedContainer(t *testing.T, segs ...string) *resource.Container {
	t.Helper()
	joined := ""
	var ranges []resource.Range
	for i, s := range segs {
		if i > 0 {
			joined += " "
		}
		ranges = append(ranges, resource.Range{Start: len(joined), End: len(joined) + len(s), ID: "s" + string(rune('1'+i))})
		joined += s
	}
	c := resource.NewContainer(joined)
	require.NoError(t, c.Resegment(ranges, false))
	return c
}
