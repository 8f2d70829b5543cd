package bridge

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Go has no per-thread storage equivalent to the active-session context
// manager described by the protocol; the closest idiomatic analogue is
// a single process-wide stack guarded by a mutex, since the bridge's own
// contract already restricts a Session to sequential (not concurrent)
// use from multiple goroutines. Use pushes path-scoped sessions onto
// this stack so package-level convenience helpers can find "the current
// session" without threading one through every call site.
var (
	stackMu sync.Mutex
	stack   []*Session

	liveMu sync.Mutex
	live   = map[*Session]struct{}{}

	cleanupOnce sync.Once
)

// Current returns the innermost active session pushed by Use, or nil if
// none is active.
func Current() *Session {
	stackMu.Lock()
	defer stackMu.Unlock()
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}

// Use spawns a session for path, makes it the Current session for the
// duration of fn, and closes it on return. Nesting is permitted: the
// inner session supersedes the outer until fn returns.
func Use(path string, fn func(*Session) error, opts ...Option) error {
	s, err := New(path, opts...)
	if err != nil {
		return err
	}
	stackMu.Lock()
	stack = append(stack, s)
	stackMu.Unlock()

	defer func() {
		stackMu.Lock()
		stack = stack[:len(stack)-1]
		stackMu.Unlock()
		_ = s.Close()
	}()

	return fn(s)
}

func register(s *Session) {
	liveMu.Lock()
	live[s] = struct{}{}
	liveMu.Unlock()
}

func unregister(s *Session) {
	liveMu.Lock()
	delete(live, s)
	liveMu.Unlock()
}

// CloseAll closes every session this process has spawned and not yet
// closed. It is the bridge's at-exit cleanup: callers that cannot rely
// on normal Close ordering (a crash, an interrupt) should invoke it
// directly, and InstallSignalCleanup wires it to SIGINT/SIGTERM.
func CloseAll() {
	liveMu.Lock()
	sessions := make([]*Session, 0, len(live))
	for s := range live {
		sessions = append(sessions, s)
	}
	liveMu.Unlock()

	for _, s := range sessions {
		_ = s.Close()
	}
}

// InstallSignalCleanup registers a handler that closes all live sessions
// (terminating their child processes) on SIGINT or SIGTERM, then exits
// the process with status 1. Safe
// to call more than once; only the first call installs the handler.
func InstallSignalCleanup() {
	cleanupOnce.Do(func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-ch
			CloseAll()
			os.Exit(1)
		}()
	})
}
