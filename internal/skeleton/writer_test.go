package skeleton

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitmerge/internal/charset"
	"kitmerge/internal/resource"
)

func unitEvent(id, source, before, after string) *resource.Event {
	u := resource.NewUnit(id, source)
	u.Skeleton = resource.NewSkeleton(before)
	u.Skeleton.AddContentPlaceholder()
	u.Skeleton.Add(after)
	return resource.NewUnitEvent(u)
}

func sampleStream(translated bool) []*resource.Event {
	hello := unitEvent("1", "Hello", "greeting=", "\n")
	if translated {
		hello.Unit().SetTarget("fr", resource.NewContainer("Bonjour"))
	}
	return []*resource.Event{
		resource.NewStartDocumentEvent(&resource.StartDocument{ID: "sd", Encoding: "UTF-8"}),
		resource.NewDocumentPartEvent(&resource.DocumentPart{ID: "dp1", Skeleton: resource.NewSkeleton("[main]\n")}),
		hello,
		unitEvent("2", "Bye", "farewell=", "\n"),
		resource.NewEndingEvent(resource.EventEndDocument, &resource.Ending{ID: "end"}),
	}
}

func TestWriter_RendersTargetOrSource(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter()
	w.SetOptions("fr", "")
	w.SetOutputWriter(&buf)
	for _, ev := range sampleStream(true) {
		require.NoError(t, w.HandleEvent(ev))
	}
	require.NoError(t, w.Close())

	assert.Equal(t, "[main]\ngreeting=Bonjour\nfarewell=Bye\n", buf.String())
}

func TestWriter_CommitsFileOnEndDocument(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out", "app.ini")
	w := NewWriter()
	w.SetOptions("fr", "ISO-8859-1")
	w.SetOutput(out)

	events := sampleStream(true)
	events[2].Unit().SetTarget("fr", resource.NewContainer("Salut ça va"))
	for _, ev := range events {
		require.NoError(t, w.HandleEvent(ev))
	}
	require.NoError(t, w.Close())

	text, err := charset.ReadFile(out, "ISO-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "[main]\ngreeting=Salut ça va\nfarewell=Bye\n", text)

	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary file left")
}

func TestWriter_CloseWithoutEndLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "app.ini")
	w := NewWriter()
	w.SetOutput(out)

	events := sampleStream(false)
	for _, ev := range events[:3] {
		require.NoError(t, w.HandleEvent(ev))
	}
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
