package resources

import (
	"fmt"
	"unicode/utf16"

	"github.com/spaghettifunk/on3d/engine/core"
	"golang.org/x/text/encoding/unicode"
)

// NameFieldSize is the width in bytes of every name field in the pack tables.
const NameFieldSize = 128

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// DecodeUTF16Field decodes a fixed-width UTF-16LE field. Zero code units are dropped
// wherever they sit on the 2-byte grid, not only as trailing padding.
func DecodeUTF16Field(field []byte) (string, error) {
	units := make([]byte, 0, len(field))
	for i := 0; i+1 < len(field); i += 2 {
		if field[i] == 0 && field[i+1] == 0 {
			continue
		}
		units = append(units, field[i], field[i+1])
	}
	out, err := utf16le.NewDecoder().Bytes(units)
	if err != nil {
		return "", fmt.Errorf("%w: utf-16 name: %v", core.ErrFormat, err)
	}
	return string(out), nil
}

// EncodeUTF16Field encodes s into exactly size bytes of UTF-16LE. Longer names are
// cut on a code-unit boundary and never split a surrogate pair.
func EncodeUTF16Field(s string, size int) ([]byte, bool, error) {
	encoded, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, false, fmt.Errorf("%w: utf-16 name %q: %v", core.ErrValidation, s, err)
	}
	truncated := false
	if len(encoded) > size {
		truncated = true
		cut := size &^ 1
		if cut >= 2 {
			last := rune(uint16(encoded[cut-2]) | uint16(encoded[cut-1])<<8)
			if utf16.IsSurrogate(last) && last < 0xDC00 {
				cut -= 2
			}
		}
		encoded = encoded[:cut]
	}
	field := make([]byte, size)
	copy(field, encoded)
	return field, truncated, nil
}
