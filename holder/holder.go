// Package holder implements the document holder (§4.8): the single
// in-memory owner of one document's parsed state, its dirty flag, its
// change-detection snapshot, and the flush path that serializes edits back
// to disk.
//
// Grounded on the teacher's blob_set.go idiom of one struct owning several
// related immutable artifacts behind lifecycle methods, generalized from
// "own a set of blobs" to "own a document's parsed container plus its
// on-disk identity".
package holder

import (
	"crypto/sha256"
	"fmt"
	"log"
	"os"

	"github.com/google/renameio/v2"

	"github.com/gohwp/hwp/archive"
	"github.com/gohwp/hwp/binary"
	"github.com/gohwp/hwp/compress"
	"github.com/gohwp/hwp/doc"
	"github.com/gohwp/hwp/errs"
	"github.com/gohwp/hwp/format"
	"github.com/gohwp/hwp/ops"
)

// Holder is the sole mutable state for one open document. Only the
// daemon's event loop goroutine ever calls its methods (§5): no internal
// locking is needed because there is never more than one caller.
type Holder struct {
	path string
	tag  format.Tag

	bc *binary.Container
	ac *archive.Container

	bm *binary.Mutator
	am *archive.Mutator

	sections  []doc.Section
	header    doc.Header
	haveCache bool

	dirty bool

	stat   fileStat
	digest [32]byte

	flushSched *FlushScheduler

	// rollback holds an lz4-compressed snapshot of the serialized document
	// taken just before a flush attempt, discarded as soon as the flush
	// either succeeds or fails cleanly; it exists purely so a future
	// mid-flush crash has something to recover from, never to influence
	// flush()'s own return value (§9 "rollback snapshots never affect
	// flush()'s observable output").
	rollback []byte

	logger *log.Logger
}

// Load opens path, detects its format, and parses it into a fresh Holder.
func Load(path string) (*Holder, error) {
	h := &Holder{path: path, logger: log.New(os.Stderr, "holder: ", log.LstdFlags)}
	if err := h.load(); err != nil {
		return nil, err
	}

	return h, nil
}

func (h *Holder) load() error {
	raw, err := os.ReadFile(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", errs.ErrFileMissing, h.path)
		}

		return fmt.Errorf("%w: reading %s: %v", errs.ErrIO, h.path, err)
	}

	tag, err := detectFormat(raw)
	if err != nil {
		return err
	}

	st, err := statFile(h.path)
	if err != nil {
		return err
	}

	switch tag {
	case format.Binary:
		bc, err := binary.ParseContainer(raw)
		if err != nil {
			return err
		}
		h.bc, h.ac = bc, nil
		h.bm, h.am = binary.NewMutator(bc), nil
	case format.Archive:
		ac, err := archive.ParseContainer(raw)
		if err != nil {
			return err
		}
		h.ac, h.bc = ac, nil
		h.am, h.bm = archive.NewMutator(ac), nil
	}

	h.tag = tag
	h.stat = st
	h.digest = sha256.Sum256(raw)
	h.dirty = false
	h.haveCache = false
	h.sections, h.header = nil, doc.Header{}

	return nil
}

// FormatTag reports which on-disk persistence strategy this document uses.
func (h *Holder) FormatTag() format.Tag {
	return h.tag
}

// IsDirty reports whether edits are pending a flush.
func (h *Holder) IsDirty() bool {
	return h.dirty
}

// GetHeader returns the document's header tables, refreshing the parsed
// cache and running change detection first.
func (h *Holder) GetHeader() (doc.Header, error) {
	if err := h.refresh(); err != nil {
		return doc.Header{}, err
	}

	return h.header, nil
}

// GetSections returns the document's parsed sections, refreshing the
// parsed cache and running change detection first (§4.8 get_sections:
// "calls check_file_changed before returning").
func (h *Holder) GetSections() ([]doc.Section, error) {
	if err := h.refresh(); err != nil {
		return nil, err
	}

	return h.sections, nil
}

// refresh re-materializes the section/header cache from the live
// container if it was invalidated by an edit, then runs change detection.
//
// The spec's binary variant is described as writing a temp file and
// re-reading it to share code with the reader; here the container's
// in-memory Serialize()+Parse() round trip achieves the same code sharing
// without touching disk, since Go byte slices already give the reader an
// identical view of the bytes a temp file would have held. The archive
// variant calls its section parser directly off the live XML trees via
// archive.DocumentFrom, exactly as worded.
func (h *Holder) refresh() error {
	if err := h.checkFileChanged(); err != nil {
		return err
	}

	if h.haveCache {
		return nil
	}

	var d *doc.Document
	switch h.tag {
	case format.Binary:
		raw, err := h.bc.Serialize()
		if err != nil {
			return err
		}
		d, err = binary.Parse(raw)
		if err != nil {
			return err
		}
	case format.Archive:
		d = archive.DocumentFrom(h.ac)
	}

	h.header = d.Header
	h.sections = d.Sections
	h.haveCache = true

	return nil
}

// Validate runs the structural validator over the document's current
// serialized bytes. An archive-format document short-circuits to a pass
// with an empty check list (§4.5: "an archive-format ZIP short-circuits
// to pass"), since the eight-layer pipeline only understands the binary
// record stream.
func (h *Holder) Validate() (binary.Report, error) {
	raw, err := h.serialize()
	if err != nil {
		return binary.Report{}, err
	}

	if h.tag == format.Archive {
		return binary.Report{Valid: true, FormatTag: format.Archive}, nil
	}

	return binary.Validate(raw), nil
}

// ApplyOperations dispatches each op to the format-specific mutator,
// invalidates the parsed cache, and marks the document dirty. No
// change-detection runs here (§4.8: "clear caches, set dirty=true, no
// change-detection here" — detection happens on the read path instead).
func (h *Holder) ApplyOperations(operations []ops.Operation) error {
	for _, op := range operations {
		if err := ops.Dispatch(h.tag, h.bm, h.am, op); err != nil {
			return err
		}
	}

	h.haveCache = false
	h.dirty = true

	return nil
}

// ScheduleFlush hands this holder to sched so a debounced Flush fires
// after the configured delay.
func (h *Holder) ScheduleFlush(sched *FlushScheduler) {
	h.flushSched = sched
	sched.Schedule()
}

// Flush serializes pending edits to disk, no-op if nothing is dirty. The
// binary variant additionally runs the structural validator before
// committing; a failed check reloads from disk and clears dirty rather
// than writing corrupt bytes, a validator *crash* (as opposed to a clean
// fail result) is logged and flushed through anyway (§9 resolution 3,
// "fail-open").
func (h *Holder) Flush() error {
	if !h.dirty {
		return nil
	}

	raw, err := h.serialize()
	if err != nil {
		return err
	}

	if h.tag == format.Binary {
		if ok, failErr := h.validateBeforeWrite(raw); !ok {
			return failErr
		}
	}

	h.snapshotRollback(raw)
	defer h.clearRollback()

	if err := renameio.WriteFile(h.path, raw, 0o644); err != nil {
		return fmt.Errorf("%w: flushing %s: %v", errs.ErrIO, h.path, err)
	}

	st, err := statFile(h.path)
	if err != nil {
		return err
	}

	h.stat = st
	h.digest = sha256.Sum256(raw)
	h.dirty = false

	return nil
}

func (h *Holder) serialize() ([]byte, error) {
	switch h.tag {
	case format.Binary:
		return h.bc.Serialize()
	case format.Archive:
		return h.ac.Serialize()
	default:
		return nil, fmt.Errorf("%w: unknown format tag", errs.ErrInvalidFormat)
	}
}

// validateBeforeWrite runs the eight-layer validator over the about-to-be
// written bytes. On a clean fail it reloads the last-good state from disk
// and reports ErrValidationFailed naming the failed checks; on a panic
// (an infra crash in the validator itself, not a validation failure) it
// logs a warning and lets the flush proceed, matching the fail-open
// resolution recorded in SPEC_FULL.md §10.
func (h *Holder) validateBeforeWrite(raw []byte) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Printf("warning: validator crashed, flushing fail-open: %v", r)
			ok, err = true, nil
		}
	}()

	report := binary.Validate(raw)
	if report.Valid {
		return true, nil
	}

	var failed []string
	for _, c := range report.Checks {
		if c.Status == binary.StatusFail {
			failed = append(failed, c.Name)
		}
	}

	if reloadErr := h.load(); reloadErr != nil {
		return false, reloadErr
	}
	h.dirty = false

	return false, fmt.Errorf("%w: %v", errs.ErrValidationFailed, failed)
}

// snapshotRollback lz4-compresses raw into an in-memory recovery buffer
// held only for the duration of the write; it never feeds back into the
// document's observable state.
func (h *Holder) snapshotRollback(raw []byte) {
	codec, err := compress.GetCodec(format.CacheCompressionLZ4)
	if err != nil {
		return
	}
	snap, err := codec.Compress(raw)
	if err != nil {
		return
	}
	h.rollback = snap
}

func (h *Holder) clearRollback() {
	h.rollback = nil
}

// checkFileChanged implements §4.8's state machine: stat the file and
// compare (inode, mtime, size) against the load-time snapshot; a same-stat
// match with dirty edits pending is additionally double-checked by content
// digest, to catch the tmpfs case where a fast external rewrite reuses the
// same inode/mtime/size. Any detected external replace is treated as the
// authoritative state: pending dirty edits are discarded (with a warning)
// and the document is reloaded. A missing file never falls back to cached
// data — it's reported as ErrFileMissing.
func (h *Holder) checkFileChanged() error {
	st, err := statFile(h.path)
	if err != nil {
		return err
	}

	if st.equal(h.stat) {
		if !h.dirty {
			return nil
		}

		raw, err := os.ReadFile(h.path)
		if err != nil {
			return fmt.Errorf("%w: reading %s: %v", errs.ErrIO, h.path, err)
		}
		if sha256.Sum256(raw) == h.digest {
			return nil
		}
	}

	if h.dirty {
		h.logger.Printf("warning: %s changed on disk, discarding pending edits", h.path)
	}

	return h.load()
}
