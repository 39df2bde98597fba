// Package bytesutil provides the render driver's byte/string boundary: a
// render always produces bytes, and only the render_string operation (§4.3)
// validates that boundary as UTF-8. Kept as its own package so the
// conversion and its error value live in one place; internal/render uses
// ToString in RenderString and ErrInvalidUTF8 for environment lookups.
package bytesutil

import (
	"errors"
	"unicode/utf8"
)

// ErrInvalidUTF8 is returned by ToString when b is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

// ToString validates b as UTF-8 and returns it as a string, or
// ErrInvalidUTF8 if it is not.
func ToString(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}
