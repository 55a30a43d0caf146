package charset

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	for _, name := range []string{"", "UTF-8", "utf8", "ISO-8859-1", "windows-1252", "Shift_JIS"} {
		t.Run(name, func(t *testing.T) {
			enc, err := Lookup(name)
			require.NoError(t, err)
			assert.NotNil(t, enc)
		})
	}

	_, err := Lookup("x-no-such-charset")
	require.ErrorIs(t, err, ErrUnknown)
}

func TestReadFileAndWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, "ISO-8859-1")
	require.NoError(t, err)
	_, err = w.Write([]byte("café=crème\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	// ISO-8859-1 uses one byte per character.
	assert.Equal(t, len("cafe=creme\n"), buf.Len())

	path := filepath.Join(t.TempDir(), "latin1.ini")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	text, err := ReadFile(path, "ISO-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "café=crème\n", text)
}

func TestReadFileDropsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.txt")
	require.NoError(t, os.WriteFile(path, append([]byte{0xEF, 0xBB, 0xBF}, "hi"...), 0644))

	text, err := ReadFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, "hi", text)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope"), "")
	require.ErrorIs(t, err, os.ErrNotExist)
}
