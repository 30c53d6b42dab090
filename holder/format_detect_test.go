package holder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gohwp/hwp/format"
)

func TestDetectFormat_Binary(t *testing.T) {
	tag, err := detectFormat([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0, 0})
	require.NoError(t, err)
	require.Equal(t, format.Binary, tag)
}

func TestDetectFormat_Archive(t *testing.T) {
	tag, err := detectFormat([]byte{'P', 'K', 0x03, 0x04, 0, 0})
	require.NoError(t, err)
	require.Equal(t, format.Archive, tag)
}

func TestDetectFormat_Unrecognized(t *testing.T) {
	_, err := detectFormat([]byte("not a document"))
	require.Error(t, err)
}
