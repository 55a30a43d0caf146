package text

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

func TestFilter_RoundTripWithTranslation(t *testing.T) {
	const sample = "  Welcome, ${player}!\n\n\tPress any key\t\nlast line"
	path := filepath.Join(t.TempDir(), "intro.txt")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	f := New()
	require.NoError(t, f.Open(context.Background(), filter.Input{Path: path}))
	defer f.Close()

	var buf bytes.Buffer
	w := f.CreateWriter().(*skeleton.Writer)
	w.SetOptions("de", "")
	w.SetOutputWriter(&buf)

	var names []string
	for {
		ev, err := f.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if u := ev.Unit(); u != nil {
			names = append(names, u.Name)
			if u.Name == "line3" {
				u.SetTarget("de", resource.NewContainer("Beliebige Taste"))
			}
		}
		require.NoError(t, w.HandleEvent(ev))
	}
	require.NoError(t, w.Close())

	assert.Equal(t, []string{"line1", "line3", "line4"}, names)
	assert.Equal(t, "  Welcome, ${player}!\n\n\tBeliebige Taste\t\nlast line", buf.String())
}
