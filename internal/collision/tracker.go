// Package collision tracks name-to-hash assignments in an append-only
// name table and flags hash collisions when two distinct names hash to the
// same value.
//
// It backs the dedup table used when the archive mutator adds a new
// hh:fontface (the binary mutator scans FACE_NAME records directly): before
// appending a candidate name, the caller hashes it with internal/hash and
// asks the tracker whether that exact name is already present, so it can
// reuse the existing entry's id instead of duplicating it.
package collision

import (
	"github.com/gohwp/hwp/errs"
)

// Tracker tracks names and detects hash collisions as new names are added
// to an ordered table (font faces, style names, ...).
type Tracker struct {
	byHash       map[uint64]string // hash → first name seen at that hash
	ordered      []string          // ordered list matching table insertion order
	hasCollision bool              // true once two distinct names share a hash
}

// NewTracker creates a new, empty collision tracker.
func NewTracker() *Tracker {
	return &Tracker{
		byHash:  make(map[uint64]string),
		ordered: make([]string, 0),
	}
}

// IndexOf returns the table index of name if it is already tracked under
// hash, and whether it was found. Used to dedup before appending a new
// table entry.
func (t *Tracker) IndexOf(name string, hash uint64) (int, bool) {
	if _, ok := t.byHash[hash]; !ok {
		return 0, false
	}

	for i, n := range t.ordered {
		if n == name {
			return i, true
		}
	}

	return 0, false
}

// Track records name as a new table entry under hash.
//
// Returns ErrInvalidReference if name is empty. A hash collision (a
// different name already occupies this hash) is not an error — it sets the
// HasCollision flag and the name is appended regardless, since table
// identity is positional, not hash-based.
func (t *Tracker) Track(name string, hash uint64) error {
	if name == "" {
		return errs.ErrInvalidReference
	}

	if existing, exists := t.byHash[hash]; exists && existing != name {
		t.hasCollision = true
	} else if !exists {
		t.byHash[hash] = name
	}

	t.ordered = append(t.ordered, name)

	return nil
}

// HasCollision returns true if two distinct names have hashed to the same
// value since the last Reset.
func (t *Tracker) HasCollision() bool {
	return t.hasCollision
}

// Names returns the ordered list of tracked names.
func (t *Tracker) Names() []string {
	return t.ordered
}

// Count returns the number of tracked names.
func (t *Tracker) Count() int {
	return len(t.ordered)
}

// Reset clears all tracked names and the collision flag, preserving map
// capacity for reuse.
func (t *Tracker) Reset() {
	for k := range t.byHash {
		delete(t.byHash, k)
	}
	t.ordered = t.ordered[:0]
	t.hasCollision = false
}
