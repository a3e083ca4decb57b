package parser

import (
	"unicode"
	"unicode/utf8"
)

// ValidateID checks that id is an XML NCName, the lexical space of gml:id
// and gid. The empty string is accepted and means no identifier.
func ValidateID(id string) bool {
	if id == "" {
		return true
	}
	for i, r := range id {
		if r == utf8.RuneError || r == ':' {
			return false
		}
		if i == 0 {
			if !(r == '_' || unicode.IsLetter(r)) {
				return false
			}
			continue
		}
		if !(r == '_' || r == '-' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r) ||
			unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r) || r == '·') {
			return false
		}
	}
	return true
}

// validDimension reports whether an srsDimension value is usable.
func validDimension(d int) bool {
	return d == 2 || d == 3
}
