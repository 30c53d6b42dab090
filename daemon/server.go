package daemon

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gohwp/hwp/holder"
)

// Version is advertised in the state file and compared by clients to
// decide whether a running daemon is stale.
const Version = "1"

const defaultIdleTimeout = 5 * time.Minute

// Server is the single-threaded cooperative command executor wrapping one
// holder.Holder (§5: "one event loop handles I/O and dispatch; mutator and
// validator run synchronously on it... avoiding a thread pool removes the
// need to lock the Holder"). Every connection's requests funnel through
// one channel so commands — even from different connections — never run
// concurrently (§5 "ordering").
type Server struct {
	h         *holder.Holder
	token     string
	statePath string
	docPath   string

	flushSched *holder.FlushScheduler

	cmds chan commandReq

	mu        sync.Mutex
	idleTimer *time.Timer
	idleCh    chan struct{}

	logger *log.Logger
}

type commandReq struct {
	req    Request
	respCh chan Response
}

// NewServer builds a Server over h, backing the document at docPath,
// generating a fresh auth token.
func NewServer(h *holder.Holder, docPath, statePath string) (*Server, error) {
	token, err := NewToken()
	if err != nil {
		return nil, err
	}

	s := &Server{
		h:         h,
		token:     token,
		statePath: statePath,
		docPath:   docPath,
		cmds:      make(chan commandReq),
		idleCh:    make(chan struct{}),
		logger:    log.New(os.Stderr, "hwpclid: ", log.LstdFlags),
	}
	s.flushSched = holder.NewFlushScheduler(s.backgroundFlush, flushDelay())

	return s, nil
}

// Serve listens on loopback TCP, writes the discovery state file, and
// runs the executor and accept loops until the listener closes.
func (s *Server) Serve() error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}
	defer ln.Close() //nolint:errcheck

	port := ln.Addr().(*net.TCPAddr).Port
	if err := WriteState(s.statePath, State{
		Port:    port,
		Token:   s.token,
		PID:     os.Getpid(),
		Version: Version,
	}); err != nil {
		return err
	}

	go s.executorLoop()
	s.armIdle()

	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(conn)
	}
}

// IdleTimeout returns a channel that closes exactly once, when the idle
// timer elapses with no command activity in the meantime.
func (s *Server) IdleTimeout() <-chan struct{} {
	return s.idleCh
}

// Token reports the server's authentication token, for tests and the
// in-process launch path that skips the state-file round trip.
func (s *Server) Token() string {
	return s.token
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close() //nolint:errcheck

	for {
		req, err := ReadRequest(conn)
		if err != nil {
			return
		}

		respCh := make(chan Response, 1)
		s.cmds <- commandReq{req: req, respCh: respCh}
		resp := <-respCh

		if err := WriteResponse(conn, resp); err != nil {
			return
		}
	}
}

// executorLoop is the sole goroutine that ever touches s.h, guaranteeing
// the single-threaded cooperative model (§5).
func (s *Server) executorLoop() {
	for c := range s.cmds {
		s.resetIdle()
		c.respCh <- s.executeRecovered(c.req)
	}
}

// executeRecovered runs execute, turning a panic from dispatch into a crash
// dump (when HWPCLI_DEBUG_DUMP is set) before letting the process die, so a
// human can inspect the document state that triggered the crash.
func (s *Server) executeRecovered(req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			if dir := os.Getenv("HWPCLI_DEBUG_DUMP"); dir != "" {
				if path, err := s.h.DumpDebugSnapshot(dir); err != nil {
					log.Printf("hwpclid: debug dump failed: %v", err)
				} else {
					log.Printf("hwpclid: wrote crash debug dump to %s", path)
				}
			}
			panic(r)
		}
	}()

	return s.execute(req)
}

func (s *Server) execute(req Request) Response {
	if req.Token != s.token {
		return Response{Success: false, Error: "Unauthorized: invalid token"}
	}

	data, err := dispatch(s.h, req.Command, req.Args)
	if err != nil {
		return errorResponse(err)
	}

	if s.h.IsDirty() {
		s.flushSched.Schedule()
	}

	return Response{Success: true, Data: data}
}

func (s *Server) backgroundFlush() {
	respCh := make(chan Response, 1)
	s.cmds <- commandReq{
		req:    Request{Token: s.token, Command: "__flush", Args: json.RawMessage("{}")},
		respCh: respCh,
	}
	<-respCh
}

func (s *Server) resetIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.idleTimer == nil {
		s.idleTimer = time.AfterFunc(idleTimeout(), func() { close(s.idleCh) })

		return
	}
	s.idleTimer.Reset(idleTimeout())
}

func (s *Server) armIdle() {
	s.resetIdle()
}

func idleTimeout() time.Duration {
	if ms, ok := envMillis("HWPCLI_DAEMON_IDLE_MS"); ok {
		return time.Duration(ms) * time.Millisecond
	}

	return defaultIdleTimeout
}

func flushDelay() time.Duration {
	return 0 // let holder.NewFlushScheduler resolve HWPCLI_DAEMON_FLUSH_MS itself
}

func envMillis(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return 0, false
	}

	return ms, true
}

func errorResponse(err error) Response {
	return Response{Success: false, Error: fmt.Sprintf("%v", err)}
}
