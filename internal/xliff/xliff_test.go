package xliff

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitmerge/internal/filter"
	"kitmerge/internal/resource"
)

func boldSource() *resource.Container {
	f := resource.NewFragment("Click ")
	f.AppendCode(resource.TagOpening, "b", "<b>").DisplayText = "<b>"
	f.Append("here")
	f.AppendCode(resource.TagClosing, "b", "</b>")
	f.Append(".")
	f.AppendCode(resource.TagStandalone, "var", "{0}")
	return resource.NewContainerFromFragment(f)
}

func segmented(t *testing.T, segs ...string) *resource.Container {
	t.Helper()
	c := resource.NewContainer(strings.Join(segs, " "))
	var ranges []resource.Range
	pos := 0
	for i, s := range segs {
		ranges = append(ranges, resource.Range{Start: pos, End: pos + len(s), ID: string(rune('a' + i))})
		pos += len(s) + 1
	}
	require.NoError(t, c.Resegment(ranges, false))
	return c
}

func writeKit(t *testing.T, events []*resource.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "work", "app.ini.xlf")
	w := NewWriter()
	w.SetOptions("fr-FR", "")
	w.SetOutput(path)
	for _, ev := range events {
		require.NoError(t, w.HandleEvent(ev))
	}
	require.NoError(t, w.Close())
	return path
}

func readKit(t *testing.T, path string, params string) []*resource.Event {
	t.Helper()
	f := NewFilter()
	require.NoError(t, f.Open(context.Background(), filter.Input{Path: path, TargetLocale: "fr-FR", Params: params}))
	defer f.Close()
	var events []*resource.Event
	for {
		ev, err := f.Next()
		if err == io.EOF {
			return events
		}
		require.NoError(t, err)
		events = append(events, ev)
	}
}

func TestWriteThenRead(t *testing.T) {
	u1 := &resource.Unit{ID: "1", Name: "menu/open", Translatable: true, Source: boldSource()}
	trg := boldSource()
	trg.SetProperty(resource.PropertyApproved, "yes")
	u1.SetTarget("fr-FR", trg)
	u1.Annotations = map[string]string{"section": "menu"}

	u2 := &resource.Unit{ID: "2", Translatable: true, Source: segmented(t, "One.", "Two.", "Three.")}
	u2.SetTarget("fr-FR", segmented(t, "Un.", "Deux.", "Trois."))

	u3 := resource.NewUnit("3", "v1.0")
	u3.Translatable = false

	path := writeKit(t, []*resource.Event{
		resource.NewStartDocumentEvent(&resource.StartDocument{ID: "sd", Name: "app.ini", Locale: "en-US", FilterID: "okf_ini"}),
		resource.NewDocumentPartEvent(&resource.DocumentPart{ID: "dp1", Skeleton: resource.NewSkeleton("[menu]\n")}),
		resource.NewUnitEvent(u1),
		resource.NewGroupEvent(resource.EventStartGroup, &resource.Group{ID: "g1", Name: "dialog"}),
		resource.NewUnitEvent(u2),
		resource.NewEndingEvent(resource.EventEndGroup, &resource.Ending{ID: "g1"}),
		resource.NewUnitEvent(u3),
		resource.NewEndingEvent(resource.EventEndDocument, &resource.Ending{ID: "end"}),
	})

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	xml := string(raw)
	assert.Contains(t, xml, `<file original="app.ini" source-language="en-US" target-language="fr-FR" datatype="x-okf_ini">`)
	assert.Contains(t, xml, `<g id="1" ctype="x-b">here</g>`)
	assert.Contains(t, xml, `<mrk mid="b" mtype="seg">Two.</mrk>`)
	assert.Contains(t, xml, `translate="no"`)

	events := readKit(t, path, "")
	var types []resource.EventType
	var units []*resource.Unit
	for _, ev := range events {
		types = append(types, ev.Type)
		if u := ev.Unit(); u != nil {
			units = append(units, u)
		}
	}
	assert.Equal(t, []resource.EventType{
		resource.EventStartDocument,
		resource.EventStartSubDocument,
		resource.EventTextUnit,
		resource.EventStartGroup,
		resource.EventTextUnit,
		resource.EventEndGroup,
		resource.EventTextUnit,
		resource.EventEndSubDocument,
		resource.EventEndDocument,
	}, types)

	sd := events[0].StartDocument()
	assert.True(t, sd.Multilingual)
	assert.Equal(t, resource.LocaleID("en-US"), sd.Locale)
	assert.Equal(t, "app.ini", events[1].Group().Name)

	require.Len(t, units, 3)
	got := units[0]
	assert.Equal(t, "menu/open", got.Name)
	assert.Equal(t, "menu", got.Annotation("section"))
	assert.Equal(t, boldSource().FirstContent().String(), got.Source.FirstContent().String())
	codes := got.Source.FirstContent().Codes()
	require.Len(t, codes, 3)
	assert.Equal(t, "b", codes[0].Type)
	assert.Equal(t, resource.TagClosing, codes[1].TagType)
	approved, _ := got.Target("fr-FR").Property(resource.PropertyApproved)
	assert.Equal(t, "yes", approved)

	seg := units[1]
	assert.Equal(t, 3, seg.Source.SegmentCount())
	assert.Equal(t, "One. Two. Three.", seg.Source.Text())
	assert.Equal(t, 3, seg.Target("fr-FR").SegmentCount())
	p, ok := seg.Target("fr-FR").Segment("c")
	require.True(t, ok)
	assert.Equal(t, "Trois.", p.Content.Text())

	assert.False(t, units[2].Translatable)
	assert.Nil(t, units[2].Target("fr-FR"))
}

func TestRead_SegmentedOutputParam(t *testing.T) {
	path := writeKit(t, []*resource.Event{
		resource.NewStartDocumentEvent(&resource.StartDocument{ID: "sd", Name: "a.txt"}),
		resource.NewUnitEvent(resource.NewUnit("1", "Hi")),
		resource.NewEndingEvent(resource.EventEndDocument, &resource.Ending{ID: "end"}),
	})
	events := readKit(t, path, "segmentedOutput=true")
	assert.True(t, events[0].StartDocument().SegmentedOutput)
	assert.Equal(t, ID, events[0].StartDocument().FilterID)
}

func TestWriter_LoneCodesUseBxEx(t *testing.T) {
	f := resource.NewFragment("")
	f.AppendCode(resource.TagClosing, "i", "</i>")
	f.Append("x")
	f.AppendCode(resource.TagOpening, "b", "<b>")

	u := &resource.Unit{ID: "1", Translatable: true, Source: resource.NewContainerFromFragment(f)}
	path := writeKit(t, []*resource.Event{
		resource.NewStartDocumentEvent(&resource.StartDocument{ID: "sd", Name: "a.txt"}),
		resource.NewUnitEvent(u),
		resource.NewEndingEvent(resource.EventEndDocument, &resource.Ending{ID: "end"}),
	})
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `<ex id="1" rid="1"/>x<bx id="2" rid="2" ctype="x-b"/>`)

	events := readKit(t, path, "")
	read := events[2].Unit()
	require.NotNil(t, read)
	assert.Equal(t, f.String(), read.Source.FirstContent().String())
}

func TestFilter_MissingFile(t *testing.T) {
	err := NewFilter().Open(context.Background(), filter.Input{Path: filepath.Join(t.TempDir(), "none.xlf")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
