package resource

import "fmt"

// TagType tells how an inline code relates to the text around it.
type TagType int

const (
	TagOpening TagType = iota + 1
	TagClosing
	TagStandalone
)

func (t TagType) String() string {
	switch t {
	case TagOpening:
		return "opening"
	case TagClosing:
		return "closing"
	case TagStandalone:
		return "standalone"
	default:
		return "unknown"
	}
}

func (t TagType) marker() rune {
	switch t {
	case TagOpening:
		return MarkerOpening
	case TagClosing:
		return MarkerClosing
	default:
		return MarkerIsolated
	}
}

func tagTypeOf(marker rune) TagType {
	switch marker {
	case MarkerOpening:
		return TagOpening
	case MarkerClosing:
		return TagClosing
	default:
		return TagStandalone
	}
}

// Code is an inline placeholder standing in for original markup.
type Code struct {
	// ID is scoped to the container. Opening and closing codes of the same tag share it.
	ID      int
	TagType TagType
	// Type is the logical kind of the code (bold, link, var...).
	Type string
	// Data is the original markup the code replaces.
	Data string
	// OuterData is the markup of the code as written in an interchange format.
	OuterData   string
	DisplayText string
	Copyable    bool
	Deletable   bool
}

// NewCode creates a code that can be copied and deleted freely.
func NewCode(tagType TagType, typ, data string) *Code {
	return &Code{
		TagType:   tagType,
		Type:      typ,
		Data:      data,
		Copyable:  true,
		Deletable: true,
	}
}

// HasData reports whether the code carries original markup.
func (c *Code) HasData() bool {
	return c.Data != ""
}

// Clone returns an independent copy of the code.
func (c *Code) Clone() *Code {
	cp := *c
	return &cp
}

func (c *Code) String() string {
	return fmt.Sprintf("%s:%d:%s", c.TagType, c.ID, c.Type)
}
