package resource

// EventType tags the kind of an Event.
type EventType int

const (
	EventNoOp EventType = iota
	EventStartDocument
	EventEndDocument
	EventStartSubDocument
	EventEndSubDocument
	EventStartGroup
	EventEndGroup
	EventTextUnit
	EventDocumentPart
	EventHandoff
)

var eventTypeNames = map[EventType]string{
	EventNoOp:             "no-op",
	EventStartDocument:    "start-document",
	EventEndDocument:      "end-document",
	EventStartSubDocument: "start-subdocument",
	EventEndSubDocument:   "end-subdocument",
	EventStartGroup:       "start-group",
	EventEndGroup:         "end-group",
	EventTextUnit:         "text-unit",
	EventDocumentPart:     "document-part",
	EventHandoff:          "handoff",
}

func (t EventType) String() string {
	if s, ok := eventTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// ParseEventType returns the event type for its string form.
func ParseEventType(s string) (EventType, bool) {
	for t, name := range eventTypeNames {
		if name == s {
			return t, true
		}
	}
	return EventNoOp, false
}

// StartDocument opens a document and describes how it was parsed.
type StartDocument struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	Locale       LocaleID  `json:"locale,omitempty"`
	Encoding     string    `json:"encoding,omitempty"`
	MimeType     string    `json:"mimeType,omitempty"`
	FilterID     string    `json:"filterId,omitempty"`
	FilterParams string    `json:"filterParams,omitempty"`
	LineBreak    string    `json:"lineBreak,omitempty"`
	Multilingual bool      `json:"multilingual,omitempty"`
	// SegmentedOutput is set when the writer of this format always outputs segmented content.
	SegmentedOutput bool      `json:"segmentedOutput,omitempty"`
	Skeleton        *Skeleton `json:"skeleton,omitempty"`
}

// Group opens a group or a sub-document.
type Group struct {
	ID       string    `json:"id"`
	Name     string    `json:"name,omitempty"`
	Skeleton *Skeleton `json:"skeleton,omitempty"`
}

// Ending closes a document, sub-document or group.
type Ending struct {
	ID       string    `json:"id"`
	Skeleton *Skeleton `json:"skeleton,omitempty"`
}

// DocumentPart is a chunk of non-translatable material.
type DocumentPart struct {
	ID       string    `json:"id"`
	Skeleton *Skeleton `json:"skeleton,omitempty"`
}

// Handoff hands a finished file to the next pipeline stage as a new input document.
type Handoff struct {
	Path         string   `json:"path"`
	Encoding     string   `json:"encoding"`
	SourceLocale LocaleID `json:"sourceLocale"`
	TargetLocale LocaleID `json:"targetLocale"`
}

// Event is one item of a filter event stream.
type Event struct {
	Type     EventType
	Resource any
}

// NoOp returns an event that downstream stages ignore.
func NoOp() *Event {
	return &Event{Type: EventNoOp}
}

// NewUnitEvent wraps a unit.
func NewUnitEvent(u *Unit) *Event {
	return &Event{Type: EventTextUnit, Resource: u}
}

// NewStartDocumentEvent wraps a start-document resource.
func NewStartDocumentEvent(sd *StartDocument) *Event {
	return &Event{Type: EventStartDocument, Resource: sd}
}

// NewDocumentPartEvent wraps a skeleton chunk.
func NewDocumentPartEvent(dp *DocumentPart) *Event {
	return &Event{Type: EventDocumentPart, Resource: dp}
}

// NewGroupEvent wraps a group or sub-document start.
func NewGroupEvent(t EventType, g *Group) *Event {
	return &Event{Type: t, Resource: g}
}

// NewEndingEvent wraps the end of a document, sub-document or group.
func NewEndingEvent(t EventType, e *Ending) *Event {
	return &Event{Type: t, Resource: e}
}

// NewHandoffEvent wraps a handoff bundle.
func NewHandoffEvent(h *Handoff) *Event {
	return &Event{Type: EventHandoff, Resource: h}
}

// Unit returns the unit carried by a text-unit event, or nil.
func (e *Event) Unit() *Unit {
	u, _ := e.Resource.(*Unit)
	return u
}

// StartDocument returns the resource of a start-document event, or nil.
func (e *Event) StartDocument() *StartDocument {
	sd, _ := e.Resource.(*StartDocument)
	return sd
}

// DocumentPart returns the resource of a document-part event, or nil.
func (e *Event) DocumentPart() *DocumentPart {
	dp, _ := e.Resource.(*DocumentPart)
	return dp
}

// Group returns the resource of a start-group or start-subdocument event, or nil.
func (e *Event) Group() *Group {
	g, _ := e.Resource.(*Group)
	return g
}

// Ending returns the resource of an end event, or nil.
func (e *Event) Ending() *Ending {
	end, _ := e.Resource.(*Ending)
	return end
}

// Handoff returns the resource of a handoff event, or nil.
func (e *Event) Handoff() *Handoff {
	h, _ := e.Resource.(*Handoff)
	return h
}

// Skeleton returns the skeleton attached to the event's resource, if any.
func (e *Event) Skeleton() *Skeleton {
	switch r := e.Resource.(type) {
	case *Unit:
		return r.Skeleton
	case *StartDocument:
		return r.Skeleton
	case *Group:
		return r.Skeleton
	case *Ending:
		return r.Skeleton
	case *DocumentPart:
		return r.Skeleton
	default:
		return nil
	}
}
