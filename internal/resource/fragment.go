package resource

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Marker runes used in coded text. Each code is a marker rune followed by
// an index rune pointing into the fragment's code list.
const (
	MarkerOpening  = '\uE101'
	MarkerClosing  = '\uE102'
	MarkerIsolated = '\uE103'

	indexBase = 0xE110
)

// markerLen is the byte length of one marker pair in coded text.
var markerLen = utf8.RuneLen(MarkerOpening) + utf8.RuneLen(indexBase)

// IsMarker reports whether r starts a code reference in coded text.
func IsMarker(r rune) bool {
	return r >= MarkerOpening && r <= MarkerIsolated
}

// Fragment is a run of text with inline codes.
type Fragment struct {
	text  string
	codes []*Code
}

// NewFragment creates a fragment holding plain text.
func NewFragment(text string) *Fragment {
	return &Fragment{text: text}
}

// CodedText returns the text with code markers.
func (f *Fragment) CodedText() string {
	return f.text
}

// Codes returns the codes of the fragment, in coded-text order.
func (f *Fragment) Codes() []*Code {
	return f.codes
}

// HasCode reports whether the fragment has at least one code.
func (f *Fragment) HasCode() bool {
	return len(f.codes) > 0
}

// IsEmpty reports whether the fragment has neither text nor codes.
func (f *Fragment) IsEmpty() bool {
	return f.text == ""
}

// HasText reports whether the fragment has text outside its codes.
// Whitespace counts as text only when withWhitespace is true.
func (f *Fragment) HasText(withWhitespace bool) bool {
	for _, r := range f.PlainText() {
		if withWhitespace || !unicode.IsSpace(r) {
			return true
		}
	}
	return false
}

// Append adds plain text at the end of the fragment.
func (f *Fragment) Append(text string) {
	f.text += text
}

// AppendCode adds a new code at the end of the fragment and returns it.
// Closing codes take the id of the last unclosed opening code of the same type.
func (f *Fragment) AppendCode(tagType TagType, typ, data string) *Code {
	code := NewCode(tagType, typ, data)
	code.ID = f.nextID()
	if tagType == TagClosing {
		if id, ok := f.openingIDFor(typ); ok {
			code.ID = id
		}
	}
	f.AppendExisting(code)
	return code
}

// AppendExisting adds the given code as-is at the end of the fragment.
func (f *Fragment) AppendExisting(code *Code) {
	f.text += markerFor(code.TagType, len(f.codes))
	f.codes = append(f.codes, code)
}

// AppendFragment adds a copy of other's content at the end of the fragment.
func (f *Fragment) AppendFragment(other *Fragment) {
	if other == nil {
		return
	}
	f.appendRange(other, 0, len(other.text), true)
}

// SubFragment returns a copy of the coded-text span [start, end).
// An end of -1 means the end of the fragment.
func (f *Fragment) SubFragment(start, end int) *Fragment {
	if end == -1 || end > len(f.text) {
		end = len(f.text)
	}
	sub := &Fragment{}
	sub.appendRange(f, start, end, true)
	return sub
}

// Insert places a copy of other at the given coded-text position.
func (f *Fragment) Insert(pos int, other *Fragment) {
	if other == nil || other.IsEmpty() {
		return
	}
	if pos < 0 || pos > len(f.text) {
		pos = len(f.text)
	}
	rebuilt := &Fragment{}
	rebuilt.appendRange(f, 0, pos, false)
	rebuilt.appendRange(other, 0, len(other.text), true)
	rebuilt.appendRange(f, pos, len(f.text), false)
	f.text, f.codes = rebuilt.text, rebuilt.codes
}

// Clone returns a deep copy of the fragment.
func (f *Fragment) Clone() *Fragment {
	return f.SubFragment(0, -1)
}

// Text returns the content with each code replaced by its original data.
func (f *Fragment) Text() string {
	return f.Render(func(c *Code) string { return c.Data })
}

// PlainText returns the content without any code.
func (f *Fragment) PlainText() string {
	return f.Render(func(*Code) string { return "" })
}

// Render returns the content with each code replaced by the output of fn.
func (f *Fragment) Render(fn func(*Code) string) string {
	var b strings.Builder
	f.Walk(func(text string, code *Code) {
		if code != nil {
			b.WriteString(fn(code))
			return
		}
		b.WriteString(text)
	})
	return b.String()
}

// String shows codes as <id>, </id> and <id/> for diagnostics.
func (f *Fragment) String() string {
	return f.Render(func(c *Code) string {
		switch c.TagType {
		case TagOpening:
			return fmt.Sprintf("<%d>", c.ID)
		case TagClosing:
			return fmt.Sprintf("</%d>", c.ID)
		default:
			return fmt.Sprintf("<%d/>", c.ID)
		}
	})
}

// CodeAt returns the code referenced by the marker at pos, if any.
func (f *Fragment) CodeAt(pos int) (*Code, bool) {
	if pos < 0 || pos >= len(f.text) {
		return nil, false
	}
	r, size := utf8.DecodeRuneInString(f.text[pos:])
	if !IsMarker(r) {
		return nil, false
	}
	idx, _ := utf8.DecodeRuneInString(f.text[pos+size:])
	i := int(idx) - indexBase
	if i < 0 || i >= len(f.codes) {
		return nil, false
	}
	return f.codes[i], true
}

// Walk calls fn for every text run and every code, in order. Exactly one of text and code is set.
func (f *Fragment) Walk(fn func(text string, code *Code)) {
	start := 0
	for i := 0; i < len(f.text); {
		r, size := utf8.DecodeRuneInString(f.text[i:])
		if !IsMarker(r) {
			i += size
			continue
		}
		if start < i {
			fn(f.text[start:i], nil)
		}
		if code, ok := f.CodeAt(i); ok {
			fn("", code)
		}
		i += markerLen
		start = i
	}
	if start < len(f.text) {
		fn(f.text[start:], nil)
	}
}

func (f *Fragment) appendRange(src *Fragment, start, end int, clone bool) {
	for i := start; i < end; {
		r, size := utf8.DecodeRuneInString(src.text[i:])
		if !IsMarker(r) {
			j := i + size
			for j < end {
				r2, s2 := utf8.DecodeRuneInString(src.text[j:])
				if IsMarker(r2) {
					break
				}
				j += s2
			}
			f.text += src.text[i:j]
			i = j
			continue
		}
		if code, ok := src.CodeAt(i); ok {
			if clone {
				code = code.Clone()
			}
			f.AppendExisting(code)
		}
		i += markerLen
	}
}

func (f *Fragment) nextID() int {
	max := 0
	for _, c := range f.codes {
		if c.ID > max {
			max = c.ID
		}
	}
	return max + 1
}

func (f *Fragment) openingIDFor(typ string) (int, bool) {
	closed := make(map[int]bool)
	for i := len(f.codes) - 1; i >= 0; i-- {
		c := f.codes[i]
		switch c.TagType {
		case TagClosing:
			closed[c.ID] = true
		case TagOpening:
			if c.Type == typ && !closed[c.ID] {
				return c.ID, true
			}
		}
	}
	return 0, false
}

func markerFor(tagType TagType, index int) string {
	return string([]rune{tagType.marker(), rune(indexBase + index)})
}
