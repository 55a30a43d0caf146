package resource

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// PropertyApproved is the name of the approval property of a container.
const PropertyApproved = "approved"

// ErrInvalidRange is returned when segment ranges do not fit the content.
var ErrInvalidRange = errors.New("invalid segment range")

// Range is a span of coded text. An End of -1 means the end of the content.
type Range struct {
	Start int
	End   int
	ID    string
}

// Part is one piece of a container: a segment or the material between segments.
type Part struct {
	// ID is set for segments only.
	ID      string
	Segment bool
	Content *Fragment
}

// Container holds the ordered parts of a source or target content.
type Container struct {
	parts []*Part
	props map[string]string
}

// NewContainer creates a container with a single segment holding text.
func NewContainer(text string) *Container {
	return NewContainerFromFragment(NewFragment(text))
}

// NewContainerFromFragment creates a container with a single segment.
func NewContainerFromFragment(f *Fragment) *Container {
	return &Container{parts: []*Part{{ID: "0", Segment: true, Content: f}}}
}

// Parts returns all parts in order.
func (c *Container) Parts() []*Part {
	return c.parts
}

// AppendSegment adds a segment. An empty id is replaced by the next free one.
func (c *Container) AppendSegment(id string, f *Fragment) *Part {
	p := &Part{ID: id, Segment: true, Content: f}
	c.parts = append(c.parts, p)
	c.validateSegmentID(p)
	return p
}

// AppendInterstitial adds a non-segment part.
func (c *Container) AppendInterstitial(f *Fragment) *Part {
	p := &Part{Content: f}
	c.parts = append(c.parts, p)
	return p
}

// Segments returns the segment parts in order.
func (c *Container) Segments() []*Part {
	var segs []*Part
	for _, p := range c.parts {
		if p.Segment {
			segs = append(segs, p)
		}
	}
	return segs
}

// SegmentCount returns the number of segments.
func (c *Container) SegmentCount() int {
	n := 0
	for _, p := range c.parts {
		if p.Segment {
			n++
		}
	}
	return n
}

// Segment returns the segment with the given id.
func (c *Container) Segment(id string) (*Part, bool) {
	for _, p := range c.parts {
		if p.Segment && p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// ContentIsOneSegment reports whether the container is made of a single segment.
func (c *Container) ContentIsOneSegment() bool {
	return len(c.parts) == 1 && c.parts[0].Segment
}

// FirstContent returns the content of the first part.
func (c *Container) FirstContent() *Fragment {
	if len(c.parts) == 0 {
		c.parts = []*Part{{ID: "0", Segment: true, Content: NewFragment("")}}
	}
	return c.parts[0].Content
}

// Joined returns a copy of the whole content as one fragment.
func (c *Container) Joined() *Fragment {
	joined := NewFragment("")
	for _, p := range c.parts {
		joined.AppendFragment(p.Content)
	}
	return joined
}

// Ranges returns the coded-text span of every segment of the joined content.
func (c *Container) Ranges() []Range {
	var ranges []Range
	pos := 0
	for _, p := range c.parts {
		n := len(p.Content.CodedText())
		if p.Segment {
			ranges = append(ranges, Range{Start: pos, End: pos + n, ID: p.ID})
		}
		pos += n
	}
	return ranges
}

// JoinAll merges all parts into a single segment.
func (c *Container) JoinAll() {
	if c.ContentIsOneSegment() {
		return
	}
	id := "0"
	if segs := c.Segments(); len(segs) > 0 {
		id = segs[0].ID
	}
	c.parts = []*Part{{ID: id, Segment: true, Content: c.Joined()}}
}

// Resegment re-creates the parts from ranges over the joined content.
// Text outside the ranges becomes interstitial parts.
func (c *Container) Resegment(ranges []Range, allowEmpty bool) error {
	if len(ranges) == 0 {
		return nil
	}
	holder := c.Joined()
	size := len(holder.CodedText())

	var parts []*Part
	start, counter := 0, 0
	for _, r := range ranges {
		end := r.End
		if end == -1 {
			end = size
		}
		if end < r.Start || end > size {
			return fmt.Errorf("%w: start=%d, end=%d", ErrInvalidRange, r.Start, end)
		}
		if start > r.Start {
			return fmt.Errorf("%w: ranges out of order at %d", ErrInvalidRange, r.Start)
		}
		if end == r.Start && !allowEmpty {
			continue
		}
		if start < r.Start {
			parts = append(parts, &Part{Content: holder.SubFragment(start, r.Start)})
		}
		id := r.ID
		if id == "" {
			id = strconv.Itoa(counter)
			counter++
		}
		parts = append(parts, &Part{ID: id, Segment: true, Content: holder.SubFragment(r.Start, end)})
		start = end
	}
	if start < size {
		if start == 0 && len(parts) == 0 {
			parts = append(parts, &Part{ID: strconv.Itoa(counter), Segment: true, Content: holder})
		} else {
			parts = append(parts, &Part{Content: holder.SubFragment(start, -1)})
		}
	}
	if len(parts) == 0 {
		parts = append(parts, &Part{ID: "0", Segment: true, Content: NewFragment("")})
	}

	c.parts = nil
	for _, p := range parts {
		c.parts = append(c.parts, p)
		if p.Segment {
			c.validateSegmentID(p)
		}
	}
	return nil
}

// TruncateSegments keeps the first n segments and the parts around them.
// Interstitials after the last segment of the container are kept.
func (c *Container) TruncateSegments(n int) {
	if n < 1 || c.SegmentCount() <= n {
		return
	}
	lastSeg := -1
	for i, p := range c.parts {
		if p.Segment {
			lastSeg = i
		}
	}
	var kept []*Part
	count := 0
	for _, p := range c.parts {
		if p.Segment {
			if count == n {
				break
			}
			count++
		}
		kept = append(kept, p)
	}
	// Drop interstitials that only separated kept and dropped segments.
	for len(kept) > 0 && !kept[len(kept)-1].Segment {
		kept = kept[:len(kept)-1]
	}
	kept = append(kept, c.parts[lastSeg+1:]...)
	c.parts = kept
}

// HasText reports whether any part has text. Whitespace counts only when withWhitespace is true.
func (c *Container) HasText(withWhitespace bool) bool {
	for _, p := range c.parts {
		if p.Content.HasText(withWhitespace) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the container holds neither text nor codes.
func (c *Container) IsEmpty() bool {
	for _, p := range c.parts {
		if !p.Content.IsEmpty() {
			return false
		}
	}
	return true
}

// Text returns the joined content with codes rendered from their data.
func (c *Container) Text() string {
	return c.Joined().Text()
}

// Property returns the value of a container property.
func (c *Container) Property(name string) (string, bool) {
	v, ok := c.props[name]
	return v, ok
}

// SetProperty sets a container property.
func (c *Container) SetProperty(name, value string) {
	if c.props == nil {
		c.props = make(map[string]string)
	}
	c.props[name] = value
}

// PropertyNames returns the property names in sorted order.
func (c *Container) PropertyNames() []string {
	names := make([]string, 0, len(c.props))
	for k := range c.props {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of the container.
func (c *Container) Clone() *Container {
	cp := &Container{parts: make([]*Part, 0, len(c.parts))}
	for _, p := range c.parts {
		cp.parts = append(cp.parts, &Part{ID: p.ID, Segment: p.Segment, Content: p.Content.Clone()})
	}
	for k, v := range c.props {
		cp.SetProperty(k, v)
	}
	return cp
}

func (c *Container) validateSegmentID(seg *Part) {
	used := make(map[string]bool)
	for _, p := range c.parts {
		if p.Segment && p != seg {
			used[p.ID] = true
		}
	}
	if seg.ID != "" && !used[seg.ID] {
		return
	}
	for i := 0; ; i++ {
		id := strconv.Itoa(i)
		if !used[id] {
			seg.ID = id
			return
		}
	}
}
