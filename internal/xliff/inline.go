// Package xliff reads and writes XLIFF 1.2 documents. It is used both for
// translation kits and as a filter for XLIFF originals.
package xliff

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"kitmerge/internal/resource"
)

const (
	// ID is the format identifier of the XLIFF filter.
	ID = "okf_xliff"
	// Ext is the extension of kit files.
	Ext = ".xlf"

	namespace = "urn:oasis:names:tc:xliff:document:1.2"
	version   = "1.2"
)

var standardCtypes = map[string]bool{
	"bold": true, "italic": true, "underlined": true, "link": true, "image": true, "lb": true,
}

func ctypeFor(typ string) string {
	if typ == "" || standardCtypes[typ] || strings.HasPrefix(typ, "x-") {
		return typ
	}
	return "x-" + typ
}

func typeFromCtype(ctype string) string {
	return strings.TrimPrefix(ctype, "x-")
}

// writeFragment appends f to parent as XLIFF inline content. Balanced
// opening/closing pairs become <g>, lone ones <bx/> and <ex/>.
func writeFragment(parent *etree.Element, f *resource.Fragment) {
	paired := pairedIDs(f.Codes())
	stack := []*etree.Element{parent}
	f.Walk(func(text string, c *resource.Code) {
		cur := stack[len(stack)-1]
		if c == nil {
			cur.CreateText(text)
			return
		}
		id := strconv.Itoa(c.ID)
		switch {
		case c.TagType == resource.TagOpening && paired[c.ID]:
			g := cur.CreateElement("g")
			g.CreateAttr("id", id)
			setCtype(g, c)
			stack = append(stack, g)
		case c.TagType == resource.TagClosing && len(stack) > 1 && stack[len(stack)-1].SelectAttrValue("id", "") == id:
			stack = stack[:len(stack)-1]
		case c.TagType == resource.TagOpening:
			bx := cur.CreateElement("bx")
			bx.CreateAttr("id", id)
			bx.CreateAttr("rid", id)
			setCtype(bx, c)
			setEquiv(bx, c)
		case c.TagType == resource.TagClosing:
			ex := cur.CreateElement("ex")
			ex.CreateAttr("id", id)
			ex.CreateAttr("rid", id)
			setEquiv(ex, c)
		default:
			x := cur.CreateElement("x")
			x.CreateAttr("id", id)
			setCtype(x, c)
			setEquiv(x, c)
		}
	})
}

func setCtype(e *etree.Element, c *resource.Code) {
	if ct := ctypeFor(c.Type); ct != "" {
		e.CreateAttr("ctype", ct)
	}
}

func setEquiv(e *etree.Element, c *resource.Code) {
	if c.DisplayText != "" {
		e.CreateAttr("equiv-text", c.DisplayText)
	}
}

// pairedIDs returns the ids of opening codes closed in proper nesting order.
func pairedIDs(codes []*resource.Code) map[int]bool {
	paired := make(map[int]bool)
	var open []int
	for _, c := range codes {
		switch c.TagType {
		case resource.TagOpening:
			open = append(open, c.ID)
		case resource.TagClosing:
			if n := len(open); n > 0 && open[n-1] == c.ID {
				open = open[:n-1]
				paired[c.ID] = true
			}
		}
	}
	return paired
}

// readFragment appends the inline content of e to f.
func readFragment(e *etree.Element, f *resource.Fragment) {
	for _, tok := range e.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			f.Append(t.Data)
		case *etree.Element:
			readInline(t, f)
		}
	}
}

func readInline(e *etree.Element, f *resource.Fragment) {
	switch e.Tag {
	case "g":
		open := newCode(e, resource.TagOpening, "id")
		f.AppendExisting(open)
		readFragment(e, f)
		closing := resource.NewCode(resource.TagClosing, open.Type, "")
		closing.ID = open.ID
		f.AppendExisting(closing)
	case "x":
		f.AppendExisting(newCode(e, resource.TagStandalone, "id"))
	case "bx":
		f.AppendExisting(newCode(e, resource.TagOpening, "rid"))
	case "ex":
		f.AppendExisting(newCode(e, resource.TagClosing, "rid"))
	case "ph", "it":
		c := newCode(e, resource.TagStandalone, "id")
		c.Data = e.Text()
		f.AppendExisting(c)
	case "bpt":
		c := newCode(e, resource.TagOpening, "rid")
		c.Data = e.Text()
		f.AppendExisting(c)
	case "ept":
		c := newCode(e, resource.TagClosing, "rid")
		c.Data = e.Text()
		f.AppendExisting(c)
	default:
		// Transparent wrappers such as non-segment <mrk>.
		readFragment(e, f)
	}
}

func newCode(e *etree.Element, tagType resource.TagType, idAttr string) *resource.Code {
	c := resource.NewCode(tagType, typeFromCtype(e.SelectAttrValue("ctype", "")), "")
	raw := e.SelectAttrValue(idAttr, "")
	if raw == "" {
		raw = e.SelectAttrValue("id", "")
	}
	c.ID, _ = strconv.Atoi(raw)
	c.DisplayText = e.SelectAttrValue("equiv-text", "")
	return c
}

func isSegmentMarker(e *etree.Element) bool {
	return e.Tag == "mrk" && e.SelectAttrValue("mtype", "") == "seg"
}

// hasSegments reports whether e holds segment markers.
func hasSegments(e *etree.Element) bool {
	for _, c := range e.ChildElements() {
		if isSegmentMarker(c) {
			return true
		}
	}
	return false
}

// writeContainer writes c into e, using segment markers when segmented is set.
func writeContainer(e *etree.Element, c *resource.Container, segmented bool) {
	if !segmented {
		writeFragment(e, c.Joined())
		return
	}
	for _, p := range c.Parts() {
		if !p.Segment {
			writeFragment(e, p.Content)
			continue
		}
		mrk := e.CreateElement("mrk")
		mrk.CreateAttr("mid", p.ID)
		mrk.CreateAttr("mtype", "seg")
		writeFragment(mrk, p.Content)
	}
}

// readContainer builds a container from e. Segment markers become segments
// and anything between them becomes interstitial parts.
func readContainer(e *etree.Element) *resource.Container {
	if !hasSegments(e) {
		f := resource.NewFragment("")
		readFragment(e, f)
		return resource.NewContainerFromFragment(f)
	}
	c := new(resource.Container)
	pending := resource.NewFragment("")
	flush := func() {
		if !pending.IsEmpty() {
			c.AppendInterstitial(pending)
			pending = resource.NewFragment("")
		}
	}
	for _, tok := range e.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			pending.Append(t.Data)
		case *etree.Element:
			if !isSegmentMarker(t) {
				readInline(t, pending)
				continue
			}
			flush()
			seg := resource.NewFragment("")
			readFragment(t, seg)
			c.AppendSegment(t.SelectAttrValue("mid", ""), seg)
		}
	}
	flush()
	return c
}
