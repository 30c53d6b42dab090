package holder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDumpDebugSnapshot_WritesCompressedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.hwp")
	writeBinaryFixture(t, path, "Hello")

	h, err := Load(path)
	require.NoError(t, err)

	dumpDir := filepath.Join(t.TempDir(), "dumps")
	dest, err := h.DumpDebugSnapshot(dumpDir)
	require.NoError(t, err)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}
