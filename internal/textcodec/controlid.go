package textcodec

import "github.com/gohwp/hwp/errs"

// ControlIDLen is the fixed byte width of a reversed-ASCII control id.
const ControlIDLen = 4

// DecodeControlID reads the 4-byte reversed-ASCII control id at the start
// of a CTRL_HEADER/SHAPE_COMPONENT payload (e.g. "tbl ", "gso ", "$rec",
// "secd") and returns it in natural reading order.
func DecodeControlID(payload []byte) (string, error) {
	if len(payload) < ControlIDLen {
		return "", errs.ErrStreamTruncated
	}

	b := [ControlIDLen]byte{}
	for i := 0; i < ControlIDLen; i++ {
		b[i] = payload[ControlIDLen-1-i]
	}

	return string(b[:]), nil
}

// EncodeControlID returns the 4-byte reversed-ASCII wire encoding of a
// control id string. id is space-padded or truncated to exactly
// ControlIDLen characters before reversing, matching how producers pad
// short ids such as "tbl " or "secd".
func EncodeControlID(id string) [ControlIDLen]byte {
	padded := [ControlIDLen]byte{' ', ' ', ' ', ' '}
	copy(padded[:], id)

	var out [ControlIDLen]byte
	for i := 0; i < ControlIDLen; i++ {
		out[i] = padded[ControlIDLen-1-i]
	}

	return out
}
