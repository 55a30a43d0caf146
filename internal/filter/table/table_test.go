package table

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

const sample = "id\tname\tdesc\nsword\tSword\tA sharp blade\nshield\t\tBlocks %d damage\n"

func open(t *testing.T, params string) (*Filter, []*resource.Event) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.tsv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))
	f := New()
	require.NoError(t, f.Open(context.Background(), filter.Input{Path: path, Params: params}))
	t.Cleanup(func() { f.Close() })

	var events []*resource.Event
	for {
		ev, err := f.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		events = append(events, ev)
	}
	return f, events
}

func units(events []*resource.Event) []*resource.Unit {
	var out []*resource.Unit
	for _, ev := range events {
		if u := ev.Unit(); u != nil {
			out = append(out, u)
		}
	}
	return out
}

func TestFilter_CellsAreUnits(t *testing.T) {
	_, events := open(t, "header=true")
	us := units(events)
	require.Len(t, us, 4)

	assert.Equal(t, "sword/name", us[0].Name)
	assert.Equal(t, "Sword", us[0].Source.Text())
	assert.Equal(t, "shield/name", us[2].Name)
	assert.True(t, us[2].IsEmpty(), "empty cells become empty units")
	assert.Equal(t, "Blocks %d damage", us[3].Source.Text())
	assert.Len(t, us[3].Source.FirstContent().Codes(), 1)
}

func TestFilter_WithoutHeaderFirstRowIsData(t *testing.T) {
	_, events := open(t, "")
	us := units(events)
	require.Len(t, us, 6)
	assert.Equal(t, "id/1", us[0].Name)
}

func TestFilter_WriterReproducesOriginal(t *testing.T) {
	f, events := open(t, "header=true")
	var buf bytes.Buffer
	w := f.CreateWriter().(*skeleton.Writer)
	w.SetOutputWriter(&buf)
	for _, ev := range events {
		require.NoError(t, w.HandleEvent(ev))
	}
	require.NoError(t, w.Close())
	assert.Equal(t, sample, buf.String())
}

func TestLooksTabular(t *testing.T) {
	assert.True(t, LooksTabular(sample))
	assert.False(t, LooksTabular("just some\nplain text\n"))
	assert.False(t, LooksTabular("one\tline"))
}
