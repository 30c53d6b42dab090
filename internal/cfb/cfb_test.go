package cfb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteRead_RoundTrip(t *testing.T) {
	entries := []Entry{
		{Name: "FileHeader", Data: make([]byte, 256)},
		{Name: "DocInfo", Data: []byte("docinfo-stream-contents")},
		{Name: "BodyText/Section0", Data: []byte("section zero contents, long enough to span a couple of sectors maybe not but that is fine")},
		{Name: "BinData/BIN0001.jpg", Data: []byte{0xFF, 0xD8, 0xFF, 0xE0}},
	}

	buf := Write(entries)
	require.NotEmpty(t, buf)

	streams, err := Read(buf)
	require.NoError(t, err)

	require.Equal(t, entries[1].Data, streams["DocInfo"])
	require.Equal(t, entries[2].Data, streams["BodyText/Section0"])
	require.Equal(t, entries[3].Data, streams["BinData/BIN0001.jpg"])
}

func TestWriteRead_EmptyStream(t *testing.T) {
	entries := []Entry{
		{Name: "Empty", Data: nil},
		{Name: "NotEmpty", Data: []byte("x")},
	}

	buf := Write(entries)
	streams, err := Read(buf)
	require.NoError(t, err)
	require.Empty(t, streams["Empty"])
	require.Equal(t, []byte("x"), streams["NotEmpty"])
}
