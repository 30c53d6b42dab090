package holder

import (
	"os"
	"strconv"
	"sync"
	"time"
)

const (
	defaultFlushDelay = 2 * time.Second
	testFlushDelay    = 100 * time.Millisecond
)

// FlushScheduler is a single-shot debouncer: repeated Schedule calls before
// the delay elapses coalesce into one eventual Fire (§4.8 "flush
// scheduler"). The daemon event loop is the only goroutine that ever calls
// Schedule, so no locking is needed for the happens-before relationship
// between Schedule calls, but Stop may race a firing timer on shutdown.
type FlushScheduler struct {
	delay time.Duration
	fire  func()

	mu    sync.Mutex
	timer *time.Timer
}

// NewFlushScheduler builds a scheduler that calls fire once the debounce
// window elapses. delay defaults to 2s, or the value of
// HWPCLI_DAEMON_FLUSH_MS if set (§6.5), overridden by delayOverride when
// non-zero (the test-suite's 100ms default).
func NewFlushScheduler(fire func(), delayOverride time.Duration) *FlushScheduler {
	delay := defaultFlushDelay
	if ms, ok := envMillis("HWPCLI_DAEMON_FLUSH_MS"); ok {
		delay = time.Duration(ms) * time.Millisecond
	}
	if delayOverride > 0 {
		delay = delayOverride
	}

	return &FlushScheduler{delay: delay, fire: fire}
}

// Schedule (re)starts the debounce timer. An in-flight timer is reset
// rather than left to fire early, so a burst of edits produces exactly one
// flush shortly after the burst ends.
func (s *FlushScheduler) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer == nil {
		s.timer = time.AfterFunc(s.delay, s.fire)

		return
	}

	if !s.timer.Stop() {
		// Timer already fired or is firing; draining isn't needed since
		// AfterFunc runs fire in its own goroutine rather than a channel.
	}
	s.timer.Reset(s.delay)
}

// Stop cancels any pending flush.
func (s *FlushScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
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
