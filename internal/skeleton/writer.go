// Package skeleton writes documents back from their skeleton and records
// original event streams for later replay.
package skeleton

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"kitmerge/internal/charset"
	"kitmerge/internal/resource"
)

// Writer renders an event stream by copying skeleton text and substituting
// unit content at each placeholder. Units are rendered from their target for
// the output locale, or from their source when they have none.
type Writer struct {
	locale   resource.LocaleID
	encoding string
	path     string

	out  io.Writer
	enc  io.WriteCloser
	buf  *bufio.Writer
	file *os.File
	done bool
}

// NewWriter creates a writer. Output goes to the path set with SetOutput.
func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) SetOptions(locale resource.LocaleID, encoding string) {
	w.locale = locale
	w.encoding = encoding
}

func (w *Writer) SetOutput(path string) {
	w.path = path
}

// SetOutputWriter sends the output to out instead of a file.
func (w *Writer) SetOutputWriter(out io.Writer) {
	w.out = out
}

func (w *Writer) HandleEvent(ev *resource.Event) error {
	switch ev.Type {
	case resource.EventNoOp, resource.EventHandoff:
		return nil
	case resource.EventStartDocument:
		sd := ev.StartDocument()
		if w.encoding == "" && sd != nil {
			w.encoding = sd.Encoding
		}
		if err := w.open(); err != nil {
			return err
		}
		return w.writeSkeleton(ev.Skeleton(), nil)
	case resource.EventTextUnit:
		u := ev.Unit()
		if u == nil {
			return nil
		}
		return w.writeSkeleton(u.Skeleton, u)
	case resource.EventEndDocument:
		if err := w.writeSkeleton(ev.Skeleton(), nil); err != nil {
			return err
		}
		return w.commit()
	default:
		return w.writeSkeleton(ev.Skeleton(), nil)
	}
}

// Close releases the output. A document that did not reach EndDocument
// leaves no file behind.
func (w *Writer) Close() error {
	if w.file == nil {
		return nil
	}
	tmp := w.file.Name()
	err := w.file.Close()
	w.file = nil
	if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		return errors.Join(err, rmErr)
	}
	return err
}

func (w *Writer) open() error {
	if w.buf != nil {
		return nil
	}
	dst := w.out
	if dst == nil {
		if w.path == "" {
			return errors.New("skeleton writer: no output set")
		}
		dir := filepath.Dir(w.path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		f, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*.tmp")
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		w.file = f
		dst = f
	}
	enc, err := charset.NewWriter(dst, w.encoding)
	if err != nil {
		return fmt.Errorf("output encoding: %w", err)
	}
	w.enc = enc
	w.buf = bufio.NewWriter(enc)
	return nil
}

func (w *Writer) writeSkeleton(skl *resource.Skeleton, u *resource.Unit) error {
	if skl.IsEmpty() {
		if u != nil {
			return w.writeString(w.content(u))
		}
		return nil
	}
	for _, p := range skl.Parts {
		text := p.Text
		if p.Content {
			if u == nil {
				continue
			}
			text = w.content(u)
		}
		if err := w.writeString(text); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeString(s string) error {
	if w.buf == nil {
		if err := w.open(); err != nil {
			return err
		}
	}
	_, err := w.buf.WriteString(s)
	return err
}

func (w *Writer) content(u *resource.Unit) string {
	if u.Translatable {
		if trg := u.Target(w.locale); trg != nil {
			return trg.Text()
		}
	}
	return u.Source.Text()
}

func (w *Writer) commit() error {
	if w.done {
		return nil
	}
	if w.buf == nil {
		if err := w.open(); err != nil {
			return err
		}
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	w.done = true
	if w.file == nil {
		return nil
	}
	tmp := w.file.Name()
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	w.file = nil
	if err := os.Rename(tmp, w.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("move output into place: %w", err)
	}
	return nil
}
