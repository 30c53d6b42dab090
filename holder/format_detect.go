package holder

import (
	"bytes"
	"fmt"

	"github.com/gohwp/hwp/errs"
	"github.com/gohwp/hwp/format"
)

var (
	zipMagic = []byte{'P', 'K', 0x03, 0x04}
	cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// detectFormat sniffs raw file bytes to pick which container parser the
// holder hands them to: the compound-file binary format starts with the
// OLE2 magic, the archive format is an ordinary ZIP local-file header.
// Neither binary.ParseContainer nor archive.ParseContainer cross-checks
// the other's signature, so the holder is the first place that needs to
// choose between them from bytes alone.
func detectFormat(raw []byte) (format.Tag, error) {
	switch {
	case bytes.HasPrefix(raw, cfbMagic):
		return format.Binary, nil
	case bytes.HasPrefix(raw, zipMagic):
		return format.Archive, nil
	default:
		return 0, fmt.Errorf("%w: unrecognized file signature", errs.ErrInvalidFormat)
	}
}
