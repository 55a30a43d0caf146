package filter

import (
	"io"
	"strconv"

	"kitmerge/internal/resource"
)

// EventQueue is a FIFO of events for filters that parse a whole document up front.
type EventQueue struct {
	events []*resource.Event
	pos    int
}

// Push appends events to the queue.
func (q *EventQueue) Push(events ...*resource.Event) {
	q.events = append(q.events, events...)
}

// Next pops the next event or returns io.EOF.
func (q *EventQueue) Next() (*resource.Event, error) {
	if q.pos >= len(q.events) {
		return nil, io.EOF
	}
	ev := q.events[q.pos]
	q.events[q.pos] = nil
	q.pos++
	return ev, nil
}

// Reset drops all queued events.
func (q *EventQueue) Reset() {
	q.events = nil
	q.pos = 0
}

// Builder assembles the event stream of a line-oriented document. Skeleton
// text accumulates until the next unit, then goes out as one DocumentPart.
type Builder struct {
	queue   *EventQueue
	pending string
	units   int
	parts   int
}

// NewBuilder starts a stream with the given StartDocument.
func NewBuilder(q *EventQueue, sd *resource.StartDocument) *Builder {
	q.Push(resource.NewStartDocumentEvent(sd))
	return &Builder{queue: q}
}

// AddSkeleton appends verbatim text.
func (b *Builder) AddSkeleton(text string) {
	b.pending += text
}

// AddUnit emits a unit whose content sits between before and after.
// The unit id is assigned sequentially when empty.
func (b *Builder) AddUnit(u *resource.Unit, before, after string) {
	b.flush()
	b.units++
	if u.ID == "" {
		u.ID = strconv.Itoa(b.units)
	}
	u.Skeleton = resource.NewSkeleton(before)
	u.Skeleton.AddContentPlaceholder()
	u.Skeleton.Add(after)
	b.queue.Push(resource.NewUnitEvent(u))
}

// End flushes pending skeleton text and closes the document.
func (b *Builder) End() {
	b.flush()
	b.queue.Push(resource.NewEndingEvent(resource.EventEndDocument, &resource.Ending{ID: "end"}))
}

func (b *Builder) flush() {
	if b.pending == "" {
		return
	}
	b.parts++
	b.queue.Push(resource.NewDocumentPartEvent(&resource.DocumentPart{
		ID:       "dp" + strconv.Itoa(b.parts),
		Skeleton: resource.NewSkeleton(b.pending),
	}))
	b.pending = ""
}

// NewStartDocument describes a document opened by f from in.
func NewStartDocument(f Filter, in Input, text string) *resource.StartDocument {
	name := in.Name
	if name == "" {
		name = in.Path
	}
	enc := in.Encoding
	if enc == "" {
		enc = "UTF-8"
	}
	return &resource.StartDocument{
		ID:           "sd",
		Name:         name,
		Locale:       in.SourceLocale,
		Encoding:     enc,
		MimeType:     f.MimeType(),
		FilterID:     f.ID(),
		FilterParams: in.Params,
		LineBreak:    DetectLineBreak(text),
	}
}
