// Package filter defines the contract between document formats and the
// pipeline: a Filter turns a file into an event stream and a Writer turns an
// event stream back into a file.
package filter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"kitmerge/internal/resource"
)

// ErrUnknownFilter is returned when no filter is registered under an id.
var ErrUnknownFilter = errors.New("unknown filter")

// Input describes the document a filter opens.
type Input struct {
	// Path is the path of the file on disk.
	Path string
	// Name is the document name reported in StartDocument. Defaults to Path.
	Name         string
	Encoding     string
	SourceLocale resource.LocaleID
	TargetLocale resource.LocaleID
	// Params are the filter parameters as "key=value" pairs separated by ';'.
	Params string
}

// Filter is the interface for all document format readers.
type Filter interface {
	// ID returns the format identifier the filter is registered under.
	ID() string
	// MimeType returns the MIME type of the documents the filter reads.
	MimeType() string
	// Extensions returns the file extensions the filter handles, lower case with dot.
	Extensions() []string
	// Open parses the input. Events are then pulled with Next.
	Open(ctx context.Context, in Input) error
	// Next returns the next event, or io.EOF once the stream is exhausted.
	Next() (*resource.Event, error)
	// Close releases the input. It is safe to call more than once.
	Close() error
	// CreateWriter returns a writer producing documents of this format.
	CreateWriter() Writer
}

// Writer serializes an event stream into a document.
type Writer interface {
	// SetOptions sets the output locale and encoding. An empty encoding keeps
	// the one declared in StartDocument.
	SetOptions(locale resource.LocaleID, encoding string)
	SetOutput(path string)
	HandleEvent(ev *resource.Event) error
	// Close releases the output. Output is only kept when EndDocument was handled.
	Close() error
}

// Constructor creates a fresh filter instance.
type Constructor func() Filter

// Registry maps format identifiers to filter constructors.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
	exts  map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ctors: make(map[string]Constructor),
		exts:  make(map[string]string),
	}
}

// Register adds a constructor under id and indexes the filter's extensions.
func (r *Registry) Register(id string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[id] = ctor
	for _, ext := range ctor().Extensions() {
		ext = strings.ToLower(ext)
		if _, taken := r.exts[ext]; !taken {
			r.exts[ext] = id
		}
	}
}

// Create returns a new filter for id.
func (r *Registry) Create(id string) (Filter, error) {
	r.mu.RLock()
	ctor, ok := r.ctors[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, id)
	}
	return ctor(), nil
}

// CreateWriter returns a writer for the format registered under id.
func (r *Registry) CreateWriter(id string) (Writer, error) {
	f, err := r.Create(id)
	if err != nil {
		return nil, err
	}
	return f.CreateWriter(), nil
}

// ForExtension returns the id of the filter handling ext (".ini", ".txt", ...).
func (r *Registry) ForExtension(ext string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.exts[strings.ToLower(ext)]
	return id, ok
}

// IDs returns the registered identifiers in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.ctors))
	for id := range r.ctors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
