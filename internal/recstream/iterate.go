package recstream

// Record is one parsed record: its header, payload slice (a sub-slice of
// the original stream, not a copy), and the byte offset of the record's
// header within the stream.
type Record struct {
	Header  Header
	Payload []byte
	Offset  int
}

// Iterate parses every record in stream and returns them as a slice.
//
// Iteration stops cleanly — without error — when fewer than 4 bytes remain
// (trailing padding some producers emit) or when a declared record size
// would run past the end of the buffer; the latter case is reported back to
// the caller via truncated so validators can flag it without a hard parse
// failure, matching the reader's "parsing is total on well-formed input"
// invariant (malformed input still yields whatever records preceded the
// truncation).
func Iterate(stream []byte) (records []Record, truncated bool) {
	offset := 0

	for offset+HeaderSize <= len(stream) {
		remaining := stream[offset:]

		header, headerLen, err := DecodeHeader(remaining)
		if err != nil {
			// The loop guard leaves at least the base header, so this is an
			// extended-size header whose size word runs past the end.
			truncated = true
			break
		}

		payloadStart := offset + headerLen
		payloadEnd := payloadStart + int(header.Size)

		if payloadEnd > len(stream) {
			truncated = true
			break
		}

		records = append(records, Record{
			Header:  header,
			Payload: stream[payloadStart:payloadEnd],
			Offset:  offset,
		})

		offset = payloadEnd
	}

	return records, truncated
}
