package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitmerge/internal/placeholder"
	"kitmerge/internal/resource"
)

// kitCode builds a code the way the XLIFF reader returns it: id, type and
// display text, no data.
func kitCode(tagType resource.TagType, typ string, id int, display string) *resource.Code {
	c := resource.NewCode(tagType, typ, "")
	c.ID = id
	c.DisplayText = display
	return c
}

func TestTransferCodes_PrefersData(t *testing.T) {
	src := resource.NewFragment("")
	src.AppendCode(resource.TagStandalone, "ph", "{a}")
	src.Append(" and ")
	src.AppendCode(resource.TagStandalone, "ph", "{b}")

	// Both codes have the same type; the data decides.
	trg := resource.NewFragment("")
	trg.AppendCode(resource.TagStandalone, "ph", "{b}")
	trg.Append(" et ")
	trg.AppendCode(resource.TagStandalone, "ph", "{a}")

	res := transferCodes(src, trg)
	assert.Empty(t, res.extra)
	assert.Zero(t, res.leading)
	assert.Zero(t, res.trailing)
	assert.Equal(t, "{b} et {a}", trg.Text())
	assert.Equal(t, 2, trg.Codes()[0].ID)
	assert.Equal(t, 1, trg.Codes()[1].ID)
}

func TestTransferCodes_ReorderedPlaceholdersKeepTheirIdentity(t *testing.T) {
	src := placeholder.ToFragment("{0} of {1}", placeholder.Options{})

	trg := resource.NewFragment("")
	trg.AppendExisting(kitCode(resource.TagStandalone, placeholder.TypeIndex, 2, "{1}"))
	trg.Append(" de ")
	trg.AppendExisting(kitCode(resource.TagStandalone, placeholder.TypeIndex, 1, "{0}"))

	res := transferCodes(src, trg)
	assert.Empty(t, res.extra)
	assert.Equal(t, "{1} de {0}", trg.Text())
}

func TestTransferCodes_ReorderedLinksKeepTheirIdentity(t *testing.T) {
	src := placeholder.ToFragment(`<a href="1">foo</a> and <a href="2">bar</a>`, placeholder.Options{Tags: true})
	require.Len(t, src.Codes(), 4)

	// <g id="2">BAR</g> et <g id="1">FOO</g>
	trg := resource.NewFragment("")
	trg.AppendExisting(kitCode(resource.TagOpening, "a", 2, ""))
	trg.Append("BAR")
	trg.AppendExisting(kitCode(resource.TagClosing, "a", 2, ""))
	trg.Append(" et ")
	trg.AppendExisting(kitCode(resource.TagOpening, "a", 1, ""))
	trg.Append("FOO")
	trg.AppendExisting(kitCode(resource.TagClosing, "a", 1, ""))

	res := transferCodes(src, trg)
	assert.Empty(t, res.extra)
	assert.Zero(t, res.leading)
	assert.Zero(t, res.trailing)
	assert.Equal(t, `<a href="2">BAR</a> et <a href="1">FOO</a>`, trg.Text())
}

func TestTransferCodes_DisplayTextBeforeType(t *testing.T) {
	src := placeholder.ToFragment("%s: %d", placeholder.Options{})

	// Ids lost, display text kept.
	trg := resource.NewFragment("")
	trg.AppendExisting(kitCode(resource.TagStandalone, placeholder.TypePrintf, 8, "%d"))
	trg.Append(" : ")
	trg.AppendExisting(kitCode(resource.TagStandalone, placeholder.TypePrintf, 9, "%s"))

	transferCodes(src, trg)
	assert.Equal(t, "%d : %s", trg.Text())
	assert.Equal(t, 2, trg.Codes()[0].ID)
	assert.Equal(t, 1, trg.Codes()[1].ID)
}

func TestTransferCodes_ExtraCodes(t *testing.T) {
	src := resource.NewFragment("plain")
	trg := resource.NewFragment("simple")
	trg.AppendCode(resource.TagStandalone, "x-br", "")
	withData := trg.AppendCode(resource.TagStandalone, "x-br", "<br/>")

	res := transferCodes(src, trg)
	require.Len(t, res.extra, 1)
	assert.NotSame(t, withData, res.extra[0])
}

func TestTransferCodes_TagTypeMustAgree(t *testing.T) {
	src := resource.NewFragment("")
	src.AppendCode(resource.TagStandalone, "b", "<b/>")
	src.Append("x")

	trg := resource.NewFragment("x")
	trg.AppendCode(resource.TagOpening, "b", "")

	res := transferCodes(src, trg)
	assert.Len(t, res.extra, 1)
	// The unmatched original code goes back in front.
	assert.Positive(t, res.leading)
	assert.Zero(t, res.trailing)
	assert.Equal(t, "<b/>x", trg.Text())
}

func TestIsLeadingCode(t *testing.T) {
	f := resource.NewFragment(" ")
	first := f.AppendCode(resource.TagOpening, "b", "<b>")
	f.Append("text")
	last := f.AppendCode(resource.TagClosing, "b", "</b>")

	assert.True(t, isLeadingCode(f, first))
	assert.False(t, isLeadingCode(f, last))
	assert.False(t, isLeadingCode(f, resource.NewCode(resource.TagStandalone, "x", "")))
}

func TestShiftRanges(t *testing.T) {
	ranges := []resource.Range{{Start: 0, End: 5, ID: "a"}, {Start: 6, End: 10, ID: "b"}}

	got := shiftRanges(ranges, 10, 2, 2)
	assert.Equal(t, []resource.Range{{Start: 0, End: 7, ID: "a"}, {Start: 8, End: -1, ID: "b"}}, got)

	assert.Equal(t, ranges, shiftRanges(ranges, 10, 0, 0))
	assert.Nil(t, shiftRanges(nil, 10, 2, 0))
}
