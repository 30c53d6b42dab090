package holder

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"

	"github.com/gohwp/hwp/compress"
	"github.com/gohwp/hwp/errs"
	"github.com/gohwp/hwp/format"
)

// DumpDebugSnapshot writes a Zstd-compressed copy of the document's
// current serialized bytes under dir, for a human or tool to inspect
// after a daemon crash. Only called when HWPCLI_DEBUG_DUMP is set (§6.5);
// never part of the normal flush path.
func (h *Holder) DumpDebugSnapshot(dir string) (string, error) {
	raw, err := h.serialize()
	if err != nil {
		return "", err
	}

	codec, err := compress.GetCodec(format.CacheCompressionZstd)
	if err != nil {
		return "", err
	}

	compressed, err := codec.Compress(raw)
	if err != nil {
		return "", fmt.Errorf("%w: compressing debug dump: %v", errs.ErrIO, err)
	}

	name := fmt.Sprintf("%s.%d.zst", filepath.Base(h.path), nowUnixNano())
	dest := filepath.Join(dir, name)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating debug dump dir %s: %v", errs.ErrIO, dir, err)
	}
	if err := renameio.WriteFile(dest, compressed, 0o644); err != nil {
		return "", fmt.Errorf("%w: writing debug dump %s: %v", errs.ErrIO, dest, err)
	}

	return dest, nil
}

func nowUnixNano() int64 {
	return time.Now().UnixNano()
}
