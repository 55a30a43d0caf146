package filter

import (
	"strconv"
	"strings"
)

// Params holds filter parameters parsed from "key=value;key=value".
type Params map[string]string

// ParseParams parses a parameter string. Malformed pairs are ignored.
func ParseParams(s string) Params {
	p := make(Params)
	for _, pair := range strings.Split(s, ";") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		p[key] = strings.TrimSpace(value)
	}
	return p
}

// Bool returns the boolean value of key, or def when missing or invalid.
func (p Params) Bool(key string, def bool) bool {
	v, ok := p[key]
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// String returns the value of key, or def when missing.
func (p Params) String(key, def string) string {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}
