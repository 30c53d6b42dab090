package daemon

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/google/renameio/v2"

	"github.com/gohwp/hwp/errs"
)

// State is the discovery state file contents (§4.9, §6.4).
type State struct {
	Port    int    `json:"port"`
	Token   string `json:"token"`
	PID     int    `json:"pid"`
	Version string `json:"version"`
}

// StatePath returns the fixed discovery path for canonicalPath:
// "<tmpdir>/hwpclid-<sha256(canonicalPath)[0..16]>.json".
func StatePath(canonicalPath string) string {
	sum := sha256.Sum256([]byte(canonicalPath))

	return filepath.Join(os.TempDir(), fmt.Sprintf("hwpclid-%s.json", hex.EncodeToString(sum[:])[:16]))
}

// WriteState atomically writes the state file via a temp-file-then-rename
// (renameio's default), matching §6.4's "written atomically".
func WriteState(path string, st State) error {
	body, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("%w: encoding state file: %v", errs.ErrIO, err)
	}

	if err := renameio.WriteFile(path, body, 0o600); err != nil {
		return fmt.Errorf("%w: writing state file %s: %v", errs.ErrIO, path, err)
	}

	return nil
}

// ReadState reads and decodes a state file. A missing file is reported via
// os.IsNotExist on the returned error so callers can distinguish "no
// daemon yet" from a corrupt file.
func ReadState(path string) (State, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return State{}, err
	}

	var st State
	if err := json.Unmarshal(body, &st); err != nil {
		return State{}, fmt.Errorf("%w: corrupt state file %s: %v", errs.ErrIO, path, err)
	}

	return st, nil
}

// RemoveState deletes the state file, ignoring a not-exist error.
func RemoveState(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: removing state file %s: %v", errs.ErrIO, path, err)
	}

	return nil
}

// NewToken generates a random 32-hex-character authentication token.
func NewToken() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("%w: generating token: %v", errs.ErrIO, err)
	}

	return hex.EncodeToString(raw), nil
}

// pidAlive reports whether a process with the given pid is currently
// running, by sending it signal 0 (no-op existence probe, never delivered
// to the target).
func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	return proc.Signal(syscall.Signal(0)) == nil
}
