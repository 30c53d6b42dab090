// Package textcodec decodes and encodes the low-level byte representations
// used inside binary-format records: UTF-16LE paragraph text with inline
// control markers, UTF-16LE name strings, and the reversed-ASCII control-id
// codec for CTRL_HEADER/SHAPE_COMPONENT payloads.
//
// It plays the same role for the binary codec that the teacher's
// encoding.VarStringEncoder/DecodeMetricNames played for mebo's metric-name
// payloads: a small, dependency-free length-prefixed/structured byte-stream
// scanner, just adapted to PARA_TEXT's inline-control-skip shape instead of
// a flat length-prefixed string table.
package textcodec

import (
	"unicode/utf16"

	"github.com/gohwp/hwp/errs"
)

// Control code units that render as themselves rather than opening an
// inline control payload.
const (
	Tab              uint16 = 0x09
	LineFeed         uint16 = 0x0A
	CarriageReturn   uint16 = 0x0D
	controlThreshold uint16 = 0x20 // code units below this are control markers
	inlineSkipUnits         = 7    // code units of inline control payload following a non-literal marker
)

// ParaText is the decoded form of a PARA_TEXT record payload: the visible
// text plus a mapping from each visible rune's index back to the code-unit
// offset it started at, so callers can translate a visible-character range
// (as used by SetFormat's start/end) into the code-unit offsets that
// PARA_CHAR_SHAPE entries are keyed on.
type ParaText struct {
	Text string
	// offsets[i] is the code-unit offset at which visible rune i begins.
	// len(offsets) == len([]rune(Text))+1: the extra trailing entry records
	// the code-unit length of the whole payload for end-of-range queries.
	offsets []int
	// CodeUnitLen is len(payload)/2, the count PARA_HEADER.nChars is
	// compared against (see open question 2 in SPEC_FULL.md §10).
	CodeUnitLen int
}

// Decode parses a PARA_TEXT payload (UTF-16LE code units) into visible text,
// skipping the 7-code-unit inline control payload that follows any control
// code unit other than tab/LF/CR.
func Decode(payload []byte) (ParaText, error) {
	if len(payload)%2 != 0 {
		return ParaText{}, errs.ErrStreamTruncated
	}

	units := make([]uint16, len(payload)/2)
	for i := range units {
		units[i] = uint16(payload[2*i]) | uint16(payload[2*i+1])<<8
	}

	var (
		runes   []uint16
		offsets []int
	)

	i := 0
	for i < len(units) {
		u := units[i]
		if u >= controlThreshold || u == Tab || u == LineFeed || u == CarriageReturn {
			// The low half of a surrogate pair belongs to the rune its high
			// half already started, so it gets no offset of its own.
			lowHalf := u >= 0xDC00 && u <= 0xDFFF && len(runes) > 0 &&
				runes[len(runes)-1] >= 0xD800 && runes[len(runes)-1] <= 0xDBFF
			if !lowHalf {
				offsets = append(offsets, i)
			}
			runes = append(runes, u)
			i++

			continue
		}

		// Non-literal inline control marker: the marker itself plus 7
		// following code units of control payload are skipped entirely,
		// contributing no visible characters.
		i += 1 + inlineSkipUnits
		if i > len(units) {
			return ParaText{}, errs.ErrStreamTruncated
		}
	}

	offsets = append(offsets, len(units))

	return ParaText{
		Text:        string(utf16.Decode(runes)),
		offsets:     offsets,
		CodeUnitLen: len(units),
	}, nil
}

// VisibleLen returns the number of visible characters.
func (p ParaText) VisibleLen() int {
	return len(p.offsets) - 1
}

// CodeUnitOffset returns the code-unit offset at which the visible
// character index visibleIdx begins. visibleIdx == VisibleLen() is valid
// and returns the total code-unit length (the end-of-text offset).
func (p ParaText) CodeUnitOffset(visibleIdx int) (int, error) {
	if visibleIdx < 0 || visibleIdx >= len(p.offsets) {
		return 0, errs.ErrRangeOutOfBounds
	}

	return p.offsets[visibleIdx], nil
}

// VisibleIndexForCodeUnit returns the visible rune index whose code-unit
// offset is <= codeUnitOffset < the next entry's offset, i.e. the run-split
// position a PARA_CHAR_SHAPE entry's code-unit position maps to. Offsets
// past the end of the text clamp to VisibleLen().
func (p ParaText) VisibleIndexForCodeUnit(codeUnitOffset int) int {
	lo, hi := 0, len(p.offsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if p.offsets[mid] <= codeUnitOffset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	return lo
}

// Encode serializes text back into a PARA_TEXT payload. Inline control
// markers are not reintroduced: SetParagraphText only ever replaces text
// with plain runs, matching §4.4's "new text uses one formatting run"
// contract. If preserveTrailingCR is true and text does not already end in
// a carriage return, one is appended, matching the mutator's "preserve the
// paragraph-terminating 0x000D code unit if the original ended with one".
func Encode(text string, preserveTrailingCR bool) []byte {
	units := utf16.Encode([]rune(text))
	if preserveTrailingCR && (len(units) == 0 || units[len(units)-1] != CarriageReturn) {
		units = append(units, CarriageReturn)
	}

	out := make([]byte, len(units)*2)
	for i, u := range units {
		out[2*i] = byte(u)
		out[2*i+1] = byte(u >> 8)
	}

	return out
}

// HasTrailingCR reports whether a decoded payload's raw code units end in a
// 0x000D carriage return, without needing the visible-text mapping.
func HasTrailingCR(payload []byte) bool {
	if len(payload) < 2 {
		return false
	}

	last := uint16(payload[len(payload)-2]) | uint16(payload[len(payload)-1])<<8
	return last == CarriageReturn
}
