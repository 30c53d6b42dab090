package textcodec

import (
	"encoding/binary"
	"unicode/utf16"

	"github.com/gohwp/hwp/errs"
)

// DecodeName reads a length-prefixed UTF-16LE name string (the on-disk
// shape of FONT.name and similar DocInfo name fields): a uint16 code-unit
// count followed by that many UTF-16LE code units.
//
// Returns the decoded name and the number of bytes consumed.
func DecodeName(data []byte) (string, int, error) {
	if len(data) < 2 {
		return "", 0, errs.ErrStreamTruncated
	}

	count := int(binary.LittleEndian.Uint16(data))
	need := 2 + count*2

	if len(data) < need {
		return "", 0, errs.ErrStreamTruncated
	}

	units := make([]uint16, count)
	for i := 0; i < count; i++ {
		units[i] = binary.LittleEndian.Uint16(data[2+2*i:])
	}

	return string(utf16.Decode(units)), need, nil
}

// EncodeName returns the length-prefixed UTF-16LE wire encoding of name.
func EncodeName(name string) []byte {
	units := utf16.Encode([]rune(name))
	out := make([]byte, 2+len(units)*2)
	binary.LittleEndian.PutUint16(out, uint16(len(units))) //nolint:gosec

	for i, u := range units {
		binary.LittleEndian.PutUint16(out[2+2*i:], u)
	}

	return out
}
