package holder

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/gohwp/hwp/errs"
)

// fileStat is the (inode, mtime, size) triple the holder snapshots at load
// time and compares against on every read to detect an external replace
// (§4.8 change detection).
type fileStat struct {
	inode   uint64
	mtimeMs int64
	size    int64
}

func statFile(path string) (fileStat, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		if err == unix.ENOENT {
			return fileStat{}, fmt.Errorf("%w: %s", errs.ErrFileMissing, path)
		}

		return fileStat{}, fmt.Errorf("%w: stat %s: %v", errs.ErrIO, path, err)
	}

	return fileStat{
		inode:   st.Ino,
		mtimeMs: st.Mtim.Sec*1000 + st.Mtim.Nsec/1_000_000,
		size:    st.Size,
	}, nil
}

func (s fileStat) equal(other fileStat) bool {
	return s.inode == other.inode && s.mtimeMs == other.mtimeMs && s.size == other.size
}
