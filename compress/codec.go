package compress

import (
	"fmt"

	"github.com/gohwp/hwp/format"
)

// Compressor compresses a byte slice and returns the compressed result.
type Compressor interface {
	// Compress compresses data and returns the output, which may be the
	// input slice itself (NoOpCompressor returns it unchanged). The input
	// slice is not modified; internal buffers may be reused.
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a byte slice back to its original bytes.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec is a factory function that creates a Codec for the given
// cache-compression tier.
func CreateCodec(tier format.CacheCompression, target string) (Codec, error) {
	switch tier {
	case format.CacheCompressionNone:
		return NewNoOpCompressor(), nil
	case format.CacheCompressionLZ4:
		return NewLZ4Compressor(), nil
	case format.CacheCompressionZstd:
		return NewZstdCompressor(), nil
	default:
		return nil, fmt.Errorf("invalid %s cache compression: %s", target, tier)
	}
}

var builtinCodecs = map[format.CacheCompression]Codec{
	format.CacheCompressionNone: NewNoOpCompressor(),
	format.CacheCompressionLZ4:  NewLZ4Compressor(),
	format.CacheCompressionZstd: NewZstdCompressor(),
}

// GetCodec retrieves a built-in Codec for the given cache-compression tier.
func GetCodec(tier format.CacheCompression) (Codec, error) {
	if codec, ok := builtinCodecs[tier]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported cache compression tier: %s", tier)
}
