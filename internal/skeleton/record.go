package skeleton

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"kitmerge/internal/resource"
)

// Ext is the file extension of event recordings.
const Ext = ".skl"

// ErrNotFound is returned when a document has no recording.
var ErrNotFound = errors.New("skeleton recording not found")

// PathFor returns the recording path of a document under dir.
func PathFor(dir, relPath string) string {
	return filepath.Join(dir, filepath.FromSlash(relPath)+Ext)
}

// Recorder writes events as JSON lines.
type Recorder struct {
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
}

// NewRecorder creates the recording file, and its directory when missing.
func NewRecorder(path string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create skeleton dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create skeleton file: %w", err)
	}
	buf := bufio.NewWriter(f)
	return &Recorder{file: f, buf: buf, enc: json.NewEncoder(buf)}, nil
}

// Record appends one event.
func (r *Recorder) Record(ev *resource.Event) error {
	if err := r.enc.Encode(ev); err != nil {
		return fmt.Errorf("record %s: %w", ev.Type, err)
	}
	return nil
}

// Close flushes and closes the recording.
func (r *Recorder) Close() error {
	if r.file == nil {
		return nil
	}
	flushErr := r.buf.Flush()
	closeErr := r.file.Close()
	r.file = nil
	return errors.Join(flushErr, closeErr)
}

// Reader replays a recording written by Recorder.
type Reader struct {
	file *os.File
	dec  *json.Decoder
}

// OpenReader opens a recording. A missing file gives ErrNotFound.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open skeleton file: %w", err)
	}
	return &Reader{file: f, dec: json.NewDecoder(bufio.NewReader(f))}, nil
}

// Next returns the next recorded event, or io.EOF.
func (r *Reader) Next() (*resource.Event, error) {
	if r.file == nil {
		return nil, io.EOF
	}
	var ev resource.Event
	if err := r.dec.Decode(&ev); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read skeleton file: %w", err)
	}
	return &ev, nil
}

// Close releases the file. It is safe to call more than once.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
