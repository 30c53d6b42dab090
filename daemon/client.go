package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gohwp/hwp/errs"
)

const (
	pollInterval  = 100 * time.Millisecond
	pollAttempts  = 100 // 10s total (§4.9 "polls the state file up to 10s")
	responseDelay = 30 * time.Second
)

// Client is a single-threaded request/response client for one document's
// daemon (§5 "Client").
type Client struct {
	docPath     string
	hwpclidPath string
}

// NewClient builds a client for docPath, launching daemons (when needed)
// by executing hwpclidPath.
func NewClient(docPath, hwpclidPath string) (*Client, error) {
	canon, err := filepath.EvalSymlinks(docPath)
	if err != nil {
		// The document may not exist yet on disk; fall back to the
		// absolute, non-symlink-resolved path as the path key.
		canon, err = filepath.Abs(docPath)
		if err != nil {
			return nil, err
		}
	}

	return &Client{docPath: canon, hwpclidPath: hwpclidPath}, nil
}

// Send performs one request/response round trip, launching or relaunching
// the daemon as needed, with exactly one ECONNREFUSED retry (§5 "Client").
// When HWPCLI_NO_DAEMON=1 is set, it instead executes the command directly
// in-process and never spawns or contacts a daemon (§6.5).
func (c *Client) Send(command string, args []byte) (Response, error) {
	if NoDaemonRequested() {
		return SendInProcess(c.docPath, command, args)
	}

	st, err := c.ensureDaemon()
	if err != nil {
		return Response{}, err
	}

	resp, err := c.sendOnce(st, command, args)
	if err == nil {
		return resp, nil
	}
	if !isConnRefused(err) {
		return Response{}, err
	}

	if rmErr := RemoveState(StatePath(c.docPath)); rmErr != nil {
		return Response{}, rmErr
	}
	st, err = c.ensureDaemon()
	if err != nil {
		return Response{}, err
	}

	resp, err = c.sendOnce(st, command, args)
	if err != nil {
		if isConnRefused(err) {
			return Response{}, errs.ErrDaemonUnreachable
		}

		return Response{}, err
	}

	return resp, nil
}

func (c *Client) sendOnce(st State, command string, args []byte) (Response, error) {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", st.Port), 5*time.Second)
	if err != nil {
		return Response{}, err
	}
	defer conn.Close() //nolint:errcheck

	if err := conn.SetDeadline(time.Now().Add(responseDelay)); err != nil {
		return Response{}, err
	}

	req := Request{Token: st.Token, Command: command, Args: args}
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, err
	}
	if err := WriteFrame(conn, body); err != nil {
		return Response{}, err
	}

	resp, err := ReadResponse(conn)
	if err != nil {
		if os.IsTimeout(err) {
			return Response{}, errs.ErrTimeout
		}

		return Response{}, err
	}

	return resp, nil
}

// ensureDaemon returns the authoritative state for c's document, launching
// a daemon first if none is alive.
func (c *Client) ensureDaemon() (State, error) {
	path := StatePath(c.docPath)

	if st, ok := c.liveState(path); ok {
		return st, nil
	}

	cmd := exec.Command(c.hwpclidPath, c.docPath)
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return State{}, fmt.Errorf("%w: launching daemon: %v", errs.ErrDaemonUnreachable, err)
	}
	// The daemon is its own process now; losing the handle is intentional
	// (§4.9: "spawns a detached child").
	go cmd.Process.Release() //nolint:errcheck

	for i := 0; i < pollAttempts; i++ {
		if st, ok := c.liveState(path); ok {
			return st, nil
		}
		time.Sleep(pollInterval)
	}

	return State{}, fmt.Errorf("%w: no daemon appeared within %s", errs.ErrDaemonUnreachable, pollInterval*pollAttempts)
}

// liveState reads the state file and reports whether it names a live,
// version-matching daemon (§4.9: "state-file missing, pid dead, or version
// mismatch" are all reasons to treat the daemon as not found).
func (c *Client) liveState(path string) (State, bool) {
	st, err := ReadState(path)
	if err != nil {
		return State{}, false
	}
	if st.Version != Version || !pidAlive(st.PID) {
		return State{}, false
	}

	return st, true
}

func isConnRefused(err error) bool {
	var opErr *net.OpError

	for e := err; e != nil; {
		if oe, ok := e.(*net.OpError); ok {
			opErr = oe

			break
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}

	return opErr != nil && opErr.Op == "dial" && errors.Is(err, syscall.ECONNREFUSED)
}
