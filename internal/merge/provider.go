package merge

import (
	"context"
	"errors"

	"kitmerge/internal/filter"
	"kitmerge/internal/kit"
	"kitmerge/internal/resource"
	"kitmerge/internal/skeleton"
)

var (
	// ErrNoStartDocument is returned when a stream does not begin with StartDocument.
	ErrNoStartDocument = errors.New("start document event is missing")
	// ErrIncompleteOriginal is returned when the original stream ends before its EndDocument.
	ErrIncompleteOriginal = errors.New("original ends without end document event")
	// ErrSkeletonNotFound is returned when a document has no skeleton recording.
	ErrSkeletonNotFound = skeleton.ErrNotFound
)

// Source is a pull-based event stream. Next returns io.EOF at the end.
type Source interface {
	Next() (*resource.Event, error)
}

// Stream is the original event sequence of one document.
type Stream interface {
	Source
	// Close releases the backing file. It is safe to call more than once.
	Close() error
	// Writer returns the format writer for the merged output of a document
	// that starts with sd.
	Writer(sd *resource.StartDocument) (filter.Writer, error)
}

// Provider opens the original event stream of a kit document.
type Provider interface {
	Open(ctx context.Context, info kit.MergingInfo, trgLoc resource.LocaleID) (Stream, error)
}
