package ini

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitmerge/internal/filter"
	"kitmerge/internal/resource"
	"kitmerge/internal/skeleton"
)

const sample = "; game strings\r\n[menu]\r\nopen = Open {0}\r\nempty=\r\n\r\n[dialog]\r\nquit=Quit <b>now</b>  \r\nnot a pair\r\n"

func readAll(t *testing.T, f filter.Filter) []*resource.Event {
	t.Helper()
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

func openSample(t *testing.T, params string) *Filter {
	t.Helper()
	path := filepath.Join(t.TempDir(), "strings.ini")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))
	f := New()
	require.NoError(t, f.Open(context.Background(), filter.Input{Path: path, SourceLocale: "en", Params: params}))
	t.Cleanup(func() { f.Close() })
	return f
}

func TestFilter_Units(t *testing.T) {
	events := readAll(t, openSample(t, "tags=true"))

	var units []*resource.Unit
	for _, ev := range events {
		if u := ev.Unit(); u != nil {
			units = append(units, u)
		}
	}
	require.Len(t, units, 3)

	assert.Equal(t, "menu/open", units[0].Name)
	assert.Equal(t, "Open {0}", units[0].Source.Text())
	assert.Len(t, units[0].Source.FirstContent().Codes(), 1)

	assert.Equal(t, "menu/empty", units[1].Name)
	assert.True(t, units[1].IsEmpty())

	assert.Equal(t, "dialog/quit", units[2].Name)
	assert.Equal(t, "Quit now", units[2].Source.FirstContent().PlainText())
	assert.Equal(t, "quit=[#$$self$]  \r\n", units[2].Skeleton.String())

	sd := events[0].StartDocument()
	require.NotNil(t, sd)
	assert.Equal(t, ID, sd.FilterID)
	assert.Equal(t, "\r\n", sd.LineBreak)
	assert.Equal(t, resource.LocaleID("en"), sd.Locale)
}

func TestFilter_WriterReproducesOriginal(t *testing.T) {
	f := openSample(t, "")
	var buf bytes.Buffer
	w := f.CreateWriter().(*skeleton.Writer)
	w.SetOptions("fr", "")
	w.SetOutputWriter(&buf)
	for _, ev := range readAll(t, f) {
		require.NoError(t, w.HandleEvent(ev))
	}
	require.NoError(t, w.Close())
	assert.Equal(t, sample, buf.String())
}

func TestFilter_MissingFile(t *testing.T) {
	err := New().Open(context.Background(), filter.Input{Path: filepath.Join(t.TempDir(), "x.ini")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
