// Package recstream implements the tagged, length-prefixed record codec
// shared by every stream inside a binary-format container (DocInfo,
// BodyText/Section<n>).
//
// # Record layout
//
// Each record starts with a 4-byte little-endian header:
//
//	bits 0..9   tag id
//	bits 10..19 nesting level
//	bits 20..31 size
//
// When the packed size field reads 0xFFF, an extended 4-byte little-endian
// size immediately follows, making the full header 8 bytes. The payload
// follows the header immediately.
//
// Levels encode parent/child scoping implicitly: a record at level L is a
// child of the nearest preceding record at level L-1. recstream does not
// interpret levels beyond exposing them — the binary document reader
// (package binary) is responsible for walking them into a paragraph/table
// tree.
//
// # Iteration model
//
// Iterate returns an eager []Record rather than a streaming iterator: whole
// streams fit comfortably in memory (mirrors the teacher's own choice not to
// stream blob payloads — see §9 "Coroutine/generator patterns").
package recstream

import "github.com/gohwp/hwp/errs"

const (
	// tagMask selects bits 0..9 of the packed header word.
	tagMask = 0x03FF
	// levelShift is the bit offset of the level field.
	levelShift = 10
	// levelMask selects bits 10..19 after shifting.
	levelMask = 0x03FF
	// sizeShift is the bit offset of the inline size field.
	sizeShift = 20
	// sizeMask selects bits 20..31 after shifting.
	sizeMask = 0x0FFF

	// extendedSizeMarker is the inline size value signaling that a 4-byte
	// extended size follows the base 4-byte header.
	extendedSizeMarker = 0xFFF

	// HeaderSize is the size of a record header with an inline size.
	HeaderSize = 4
	// ExtendedHeaderSize is the size of a record header carrying an
	// extended 4-byte size field.
	ExtendedHeaderSize = 8
)

// Header is a decoded record header.
type Header struct {
	TagID uint16
	Level uint16
	Size  uint32
}

// bytes returns the record header's wire encoding: a 4-byte packed word,
// followed by a 4-byte extended size when Size >= extendedSizeMarker.
func (h Header) bytes() []byte {
	packed := uint32(h.TagID&tagMask) | (uint32(h.Level&levelMask) << levelShift)

	if h.Size >= extendedSizeMarker {
		packed |= uint32(extendedSizeMarker) << sizeShift
		out := make([]byte, ExtendedHeaderSize)
		putUint32LE(out[0:4], packed)
		putUint32LE(out[4:8], h.Size)

		return out
	}

	packed |= (h.Size & sizeMask) << sizeShift
	out := make([]byte, HeaderSize)
	putUint32LE(out, packed)

	return out
}

// headerLen returns the on-wire size of the header: 4 bytes normally, 8
// bytes when the size was extended.
func (h Header) headerLen() int {
	if h.Size >= extendedSizeMarker {
		return ExtendedHeaderSize
	}

	return HeaderSize
}

func putUint32LE(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func uint32LE(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// DecodeHeader parses a record header at the start of data.
//
// Returns the decoded header and the number of header bytes consumed (4 or
// 8). errs.ErrStreamTruncated is returned when data is too short to contain
// even the base 4-byte header, or too short for the extended size word when
// the inline size marker is set.
func DecodeHeader(data []byte) (Header, int, error) {
	if len(data) < HeaderSize {
		return Header{}, 0, errs.ErrStreamTruncated
	}

	packed := uint32LE(data)
	h := Header{
		TagID: uint16(packed & tagMask),
		Level: uint16((packed >> levelShift) & levelMask),
	}
	size := (packed >> sizeShift) & sizeMask

	if size != extendedSizeMarker {
		h.Size = size
		return h, HeaderSize, nil
	}

	if len(data) < ExtendedHeaderSize {
		return Header{}, 0, errs.ErrStreamTruncated
	}

	h.Size = uint32LE(data[4:8])

	return h, ExtendedHeaderSize, nil
}

// EncodeHeader builds the wire encoding of a record header for the given
// tag, level and payload size.
func EncodeHeader(tagID, level uint16, size uint32) []byte {
	h := Header{TagID: tagID, Level: level, Size: size}
	return h.bytes()
}

// Build returns a complete record: header followed by payload.
func Build(tagID, level uint16, payload []byte) []byte {
	h := Header{TagID: tagID, Level: level, Size: uint32(len(payload))}
	out := make([]byte, 0, h.headerLen()+len(payload))
	out = append(out, h.bytes()...)
	out = append(out, payload...)

	return out
}
