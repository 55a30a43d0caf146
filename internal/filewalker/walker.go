package filewalker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"kitmerge/internal/filter"
	"kitmerge/internal/filter/table"
	"kitmerge/internal/filter/text"
)

// Walker traverses directories and picks the filter for each document.
type Walker struct {
	registry *filter.Registry
}

// NewWalker creates a Walker dispatching on the extensions known to registry.
func NewWalker(registry *filter.Registry) *Walker {
	return &Walker{registry: registry}
}

// FileEntry represents a discovered document ready for extraction.
type FileEntry struct {
	Path string
	// Rel is the path relative to the walked root, with forward slashes.
	Rel      string
	Ext      string
	FilterID string
}

// Walk discovers all supported documents under the given root directory,
// sorted by relative path.
func (w *Walker) Walk(root string) ([]FileEntry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var entries []FileEntry

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}

		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		id, ok := w.registry.ForExtension(ext)
		if !ok {
			return nil
		}
		// Game data tables often ship as .txt.
		if id == text.ID && looksTabular(path) {
			id = table.ID
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("compute relative path: %w", err)
		}
		entries = append(entries, FileEntry{
			Path:     path,
			Rel:      filepath.ToSlash(rel),
			Ext:      ext,
			FilterID: id,
		})
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Rel < entries[j].Rel })
	log.Info().Int("count", len(entries)).Str("root", root).Msg("Discovered files")
	return entries, nil
}

func looksTabular(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return table.LooksTabular(string(data))
}
