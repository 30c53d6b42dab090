package binary

import (
	"github.com/gohwp/hwp/internal/recstream"
)

// groupEnd returns the index (exclusive) of the first record after
// records[start] whose level is <= records[start]'s level — the
// generalized "next sibling/parent boundary" rule used throughout §4.3/§9
// for paragraphs, tables, cells, and text boxes alike. Returns
// len(records) if the group runs to the end of the stream.
func groupEnd(records []recstream.Record, start int) int {
	level := records[start].Header.Level
	for i := start + 1; i < len(records); i++ {
		if records[i].Header.Level <= level {
			return i
		}
	}

	return len(records)
}

// spliceReplace swaps the bytes of stream in [startOff, endOff) for
// replacement, returning the new stream.
func spliceReplace(stream []byte, startOff, endOff int, replacement []byte) []byte {
	out := make([]byte, 0, len(stream)-(endOff-startOff)+len(replacement))
	out = append(out, stream[:startOff]...)
	out = append(out, replacement...)
	out = append(out, stream[endOff:]...)

	return out
}

// insertAt inserts raw bytes at offset, returning the new stream.
func insertAt(stream []byte, offset int, inserted []byte) []byte {
	return spliceReplace(stream, offset, offset, inserted)
}

// recordEnd returns the byte offset one past the end of a record
// (header + payload).
func recordEnd(rec recstream.Record) int {
	return rec.Offset + recordByteLen(rec)
}

// recordByteLen is the total on-stream length (header + payload) of a
// decoded record.
func recordByteLen(rec recstream.Record) int {
	headerLen := 4
	if rec.Header.Size >= 0xFFF {
		headerLen = 8
	}

	return headerLen + len(rec.Payload)
}
