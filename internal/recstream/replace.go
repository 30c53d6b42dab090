package recstream

import "github.com/gohwp/hwp/errs"

// ReplacePayload returns a new stream with the payload of the record at
// recordOffset (as reported by Iterate's Record.Offset) swapped for
// newPayload. The record's tag and level are preserved; its header size
// field is recomputed (and may grow from a 4-byte to an 8-byte header, or
// shrink the other way, if the new payload crosses the extended-size
// threshold). Every other byte in the stream is unchanged.
func ReplacePayload(stream []byte, recordOffset int, newPayload []byte) ([]byte, error) {
	if recordOffset < 0 || recordOffset+HeaderSize > len(stream) {
		return nil, errs.ErrStreamTruncated
	}

	header, headerLen, err := DecodeHeader(stream[recordOffset:])
	if err != nil {
		return nil, err
	}

	payloadStart := recordOffset + headerLen
	payloadEnd := payloadStart + int(header.Size)

	if payloadEnd > len(stream) {
		return nil, errs.ErrStreamTruncated
	}

	rebuilt := Build(header.TagID, header.Level, newPayload)

	out := make([]byte, 0, len(stream)-(payloadEnd-recordOffset)+len(rebuilt))
	out = append(out, stream[:recordOffset]...)
	out = append(out, rebuilt...)
	out = append(out, stream[payloadEnd:]...)

	return out, nil
}
