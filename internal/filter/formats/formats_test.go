package formats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := Registry()
	assert.Equal(t, []string{"okf_ini", "okf_table", "okf_text", "okf_xliff"}, r.IDs())

	for ext, want := range map[string]string{".ini": "okf_ini", ".tsv": "okf_table", ".txt": "okf_text", ".xlf": "okf_xliff"} {
		id, ok := r.ForExtension(ext)
		require.True(t, ok, ext)
		assert.Equal(t, want, id)
	}

	for _, id := range r.IDs() {
		w, err := r.CreateWriter(id)
		require.NoError(t, err)
		assert.NotNil(t, w)
	}
}
