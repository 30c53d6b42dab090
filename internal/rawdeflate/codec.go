// Package rawdeflate compresses and decompresses the binary-format
// container's DocInfo/BodyText streams.
//
// Per spec the on-disk compression is always raw deflate — no zlib header
// or trailer — selected by FileHeader[36] bit 0. This package is the
// compressed-stream equivalent of the teacher's compress.Codec: one
// narrow interface, pooled encoder state, same Compress/Decompress
// shape, just fixed to the one algorithm the format actually uses instead
// of mebo's pluggable None/Zstd/S2/LZ4 selection.
package rawdeflate

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
)

// flateWriterPool pools *flate.Writer instances; flate.Writer keeps
// internal match-finder state that is expensive to allocate fresh per call,
// mirroring the teacher's zstdEncoderPool/lz4CompressorPool pattern.
var flateWriterPool = sync.Pool{
	New: func() any {
		w, err := flate.NewWriter(io.Discard, flate.DefaultCompression)
		if err != nil {
			panic(fmt.Sprintf("failed to create flate writer for pool: %v", err))
		}

		return w
	},
}

// Compress returns data compressed as raw deflate (no zlib wrapper).
//
// The encoder need not produce byte-identical compressed output across
// runs — only decompression round-trips are required to be byte-identical,
// per §4.2.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w, _ := flateWriterPool.Get().(*flate.Writer)
	defer flateWriterPool.Put(w)

	w.Reset(&buf)

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("raw deflate compress: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("raw deflate compress: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress inflates raw-deflate data (no zlib wrapper) back to its
// original bytes.
func Decompress(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("raw deflate decompress: %w", err)
	}

	return out, nil
}
