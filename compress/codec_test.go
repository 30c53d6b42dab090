package compress

import (
	"testing"

	"github.com/gohwp/hwp/format"
	"github.com/stretchr/testify/require"
)

func TestCreateCodec(t *testing.T) {
	tests := []struct {
		name string
		tier format.CacheCompression
		want Codec
	}{
		{"none", format.CacheCompressionNone, NewNoOpCompressor()},
		{"lz4", format.CacheCompressionLZ4, NewLZ4Compressor()},
		{"zstd", format.CacheCompressionZstd, NewZstdCompressor()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, err := CreateCodec(tt.tier, "test")
			require.NoError(t, err)
			require.IsType(t, tt.want, codec)
		})
	}
}

func TestCreateCodec_InvalidTier(t *testing.T) {
	_, err := CreateCodec(format.CacheCompression(99), "test")
	require.Error(t, err)
}

func TestGetCodec(t *testing.T) {
	codec, err := GetCodec(format.CacheCompressionLZ4)
	require.NoError(t, err)
	require.NotNil(t, codec)

	_, err = GetCodec(format.CacheCompression(99))
	require.Error(t, err)
}

func TestNoOpCompressor_RoundTrip(t *testing.T) {
	c := NewNoOpCompressor()
	data := []byte("hello")

	compressed, err := c.Compress(data)
	require.NoError(t, err)
	require.Equal(t, data, compressed)

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
}

func TestLZ4Compressor_RoundTrip(t *testing.T) {
	c := NewLZ4Compressor()
	data := []byte("a rollback snapshot payload, repeated: a rollback snapshot payload")

	compressed, err := c.Compress(data)
	require.NoError(t, err)
	require.NotEmpty(t, compressed)

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
}

func TestLZ4Compressor_EmptyInput(t *testing.T) {
	c := NewLZ4Compressor()

	compressed, err := c.Compress(nil)
	require.NoError(t, err)
	require.Nil(t, compressed)

	decompressed, err := c.Decompress(nil)
	require.NoError(t, err)
	require.Nil(t, decompressed)
}

func TestZstdCompressor_RoundTrip(t *testing.T) {
	c := NewZstdCompressor()
	data := []byte("a debug-dump payload for crash recovery, repeated for ratio: a debug-dump payload for crash recovery")

	compressed, err := c.Compress(data)
	require.NoError(t, err)
	require.NotEmpty(t, compressed)

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
}
