// Package charset resolves encoding names and transcodes document content.
package charset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// UTF8 is the default encoding name.
const UTF8 = "UTF-8"

// ErrUnknown is returned for encoding names that cannot be resolved.
var ErrUnknown = errors.New("unknown encoding")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Lookup resolves an encoding name. An empty name means UTF-8.
func Lookup(name string) (encoding.Encoding, error) {
	if isUTF8(name) {
		return unicode.UTF8, nil
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc, nil
	}
	if enc, err := htmlindex.Get(name); err == nil {
		return enc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
}

// Canonical returns the IANA name of an encoding, or name itself if it has none.
func Canonical(name string) string {
	enc, err := Lookup(name)
	if err != nil {
		return name
	}
	if n, err := ianaindex.IANA.Name(enc); err == nil {
		return n
	}
	return name
}

// ReadFile reads and decodes a whole file. A leading UTF-8 BOM is dropped.
func ReadFile(path, name string) (string, error) {
	enc, err := Lookup(name)
	if err != nil {
		return "", err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	decoded, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return "", fmt.Errorf("decode %s as %s: %w", path, name, err)
	}
	return string(decoded), nil
}

// NewWriter wraps w so that text written to it is encoded with the named encoding.
// Close must be called to flush the last bytes; it does not close w.
func NewWriter(w io.Writer, name string) (io.WriteCloser, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if isUTF8(name) {
		return nopCloser{w}, nil
	}
	return transform.NewWriter(w, encoding.ReplaceUnsupported(enc.NewEncoder())), nil
}

func isUTF8(name string) bool {
	name = strings.TrimSpace(name)
	return name == "" || strings.EqualFold(name, UTF8) || strings.EqualFold(name, "utf8")
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
