package recstream

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildAndDecodeHeader_InlineSize(t *testing.T) {
	rec := Build(0x10, 2, []byte("hello"))

	header, n, err := DecodeHeader(rec)
	require.NoError(t, err)
	require.Equal(t, HeaderSize, n)
	require.Equal(t, uint16(0x10), header.TagID)
	require.Equal(t, uint16(2), header.Level)
	require.Equal(t, uint32(5), header.Size)
	require.Equal(t, []byte("hello"), rec[n:n+int(header.Size)])
}

func TestBuildAndDecodeHeader_ExtendedSize(t *testing.T) {
	payload := make([]byte, 5000)
	for i := range payload {
		payload[i] = byte(i)
	}

	rec := Build(3, 0, payload)

	header, n, err := DecodeHeader(rec)
	require.NoError(t, err)
	require.Equal(t, ExtendedHeaderSize, n)
	require.Equal(t, uint32(len(payload)), header.Size)
	require.Equal(t, payload, rec[n:n+int(header.Size)])
}

func TestDecodeHeader_Truncated(t *testing.T) {
	_, _, err := DecodeHeader([]byte{1, 2})
	require.Error(t, err)
}

func TestIterate(t *testing.T) {
	var stream []byte
	stream = append(stream, Build(1, 0, []byte("AAAA"))...)
	stream = append(stream, Build(2, 1, []byte("BB"))...)
	stream = append(stream, Build(3, 1, nil)...)

	records, truncated := Iterate(stream)
	require.False(t, truncated)
	require.Len(t, records, 3)

	require.Equal(t, uint16(1), records[0].Header.TagID)
	require.Equal(t, []byte("AAAA"), records[0].Payload)
	require.Equal(t, 0, records[0].Offset)

	require.Equal(t, uint16(2), records[1].Header.Level)
	require.Equal(t, []byte("BB"), records[1].Payload)

	require.Equal(t, uint32(0), records[2].Header.Size)
}

func TestIterate_StopsCleanlyOnTrailingBytes(t *testing.T) {
	stream := append(Build(1, 0, []byte("X")), 0x01, 0x02) // 2 trailing bytes, not enough for a header

	records, truncated := Iterate(stream)
	require.False(t, truncated)
	require.Len(t, records, 1)
}

func TestIterate_ReportsTruncation(t *testing.T) {
	full := Build(1, 0, []byte("hello world"))
	short := full[:len(full)-3] // declared size now exceeds actual bytes

	records, truncated := Iterate(short)
	require.True(t, truncated)
	require.Empty(t, records)
}

func TestReplacePayload(t *testing.T) {
	var stream []byte
	stream = append(stream, Build(1, 0, []byte("before"))...)
	target := len(stream)
	stream = append(stream, Build(2, 0, []byte("old"))...)
	stream = append(stream, Build(3, 0, []byte("after"))...)

	out, err := ReplacePayload(stream, target, []byte("new-payload"))
	require.NoError(t, err)

	records, truncated := Iterate(out)
	require.False(t, truncated)
	require.Len(t, records, 3)
	require.Equal(t, []byte("before"), records[0].Payload)
	require.Equal(t, uint16(2), records[1].Header.TagID)
	require.Equal(t, []byte("new-payload"), records[1].Payload)
	require.Equal(t, []byte("after"), records[2].Payload)
}

func TestReplacePayload_InvalidOffset(t *testing.T) {
	stream := Build(1, 0, []byte("x"))
	_, err := ReplacePayload(stream, 100, []byte("y"))
	require.Error(t, err)
}
