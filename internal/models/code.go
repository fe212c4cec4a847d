package models

import (
	"strings"

	"github.com/gosimple/slug"
)

// Column widths of the slug codes.
const (
	CategoryCodeSize = 64
	TagCodeSize      = 32
	PostCodeSize     = 64
)

// MakeCode slugifies s and cuts the result to at most size bytes. Slugs
// are ASCII, but transliteration can make them longer than s.
func MakeCode(s string, size int) string {
	code := slug.Make(s)
	if len(code) > size {
		code = strings.TrimRight(code[:size], "-")
	}
	return code
}
