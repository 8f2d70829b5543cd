// Package bridge implements the Client Bridge: the consumer-side half of
// the protocol in package protocol. It discovers and spawns the parser
// server binary, frames requests and responses over its stdio pipes,
// and exposes the session lifecycle (call, iterate, close) described in
// §4.8 of the protocol.
package bridge

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/neper-stars/clausewitz/log"
)

// DefaultTimeout is the default per-call response timeout; callers may
// override it per session or per call for large entries such as wars
// with extensive battle logs.
const DefaultTimeout = 30 * time.Second

const stderrRingSize = 200

// ParserError reports a failed or timed-out call to the server process.
// ExitCode is populated only once the child has actually exited.
type ParserError struct {
	Message    string
	ExitCode   *int
	StderrTail []string
}

func (e *ParserError) Error() string {
	if e.ExitCode != nil {
		return fmt.Sprintf("bridge: %s (exit code %d)", e.Message, *e.ExitCode)
	}
	return fmt.Sprintf("bridge: %s", e.Message)
}

// Session is one spawned parser server process and its framed pipes.
// Sequential use from multiple goroutines on the same Session is safe;
// concurrent overlapping use is not, matching the single-threaded server
// loop on the other end of the pipe.
type Session struct {
	id      uuid.UUID
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	lines   chan string
	lineErr chan error

	stderr *ringBuffer

	timeout time.Duration

	mu           sync.Mutex
	streamActive bool
	closed       bool
	closeOnce    sync.Once

	exited  chan struct{}
	waitErr error

	io *errgroup.Group // the dedicated stdout-reader and stderr-drain tasks
}

// Option configures session construction.
type Option func(*sessionConfig)

type sessionConfig struct {
	timeout time.Duration
	binary  string
}

// WithTimeout overrides the default per-call response timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *sessionConfig) { c.timeout = d }
}

// WithBinary overrides binary discovery entirely, for tests.
func WithBinary(path string) Option {
	return func(c *sessionConfig) { c.binary = path }
}

// New spawns a parser server for the archive at path and returns a ready
// session. The child is started with `serve --path <path>`.
func New(path string, opts ...Option) (*Session, error) {
	cfg := sessionConfig{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	bin := cfg.binary
	if bin == "" {
		found, err := FindBinary()
		if err != nil {
			return nil, err
		}
		bin = found
	}
	log.Debug("bridge discovered parser binary", log.F("path", bin))

	cmd := exec.Command(bin, "serve", "--path", path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("bridge: creating stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("bridge: creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("bridge: creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("bridge: starting parser process: %w", err)
	}

	s := &Session{
		id:      uuid.New(),
		cmd:     cmd,
		stdin:   stdin,
		lines:   make(chan string, 64),
		lineErr: make(chan error, 1),
		stderr:  newRingBuffer(stderrRingSize),
		timeout: cfg.timeout,
		exited:  make(chan struct{}),
	}

	var io errgroup.Group
	io.Go(func() error { return s.readStdout(stdout) })
	io.Go(func() error { return s.drainStderr(stderr) })
	s.io = &io
	go s.awaitExit()

	register(s)
	return s, nil
}

// readStdout scans the child's stdout until EOF or a scanner error, and
// returns that error so the owning errgroup can report it as the
// session's first I/O failure.
func (s *Session) readStdout(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		s.lines <- scanner.Text()
	}
	err := scanner.Err()
	if err != nil {
		s.lineErr <- err
	}
	close(s.lines)
	return err
}

// drainStderr copies the child's stderr into the ring buffer until EOF or
// a scanner error, returned for the same reason as readStdout's.
func (s *Session) drainStderr(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		s.stderr.add(scanner.Text())
	}
	return scanner.Err()
}

func (s *Session) awaitExit() {
	s.waitErr = s.cmd.Wait()
	close(s.exited)
}

// exitCode returns the child's exit code if it has already exited, nil
// otherwise.
func (s *Session) exitCode() *int {
	select {
	case <-s.exited:
		code := s.cmd.ProcessState.ExitCode()
		return &code
	default:
		return nil
	}
}

func (s *Session) parserError(message string) *ParserError {
	return &ParserError{Message: message, ExitCode: s.exitCode(), StderrTail: s.stderr.tail()}
}

// Send writes one request line to the child's stdin.
func (s *Session) Send(req any) error {
	b, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("bridge: encoding request: %w", err)
	}
	b = append(b, '\n')
	if _, err := s.stdin.Write(b); err != nil {
		return s.parserError("writing request: " + err.Error())
	}
	return nil
}

// receiveRaw blocks for exactly one line from the child within timeout.
func (s *Session) receiveRaw(timeout time.Duration) (map[string]any, error) {
	select {
	case line, ok := <-s.lines:
		if !ok {
			return nil, s.parserError("unexpected EOF from parser process")
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			return nil, s.parserError("malformed response line: " + err.Error())
		}
		return m, nil
	case err := <-s.lineErr:
		return nil, s.parserError("reading response: " + err.Error())
	case <-time.After(timeout):
		return nil, s.parserError("timed out waiting for response")
	}
}

// Call sends req and returns its single response, draining any stream
// left open by a prior abandoned IterSection first.
func (s *Session) Call(req any, timeoutOverride ...time.Duration) (map[string]any, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, s.parserError("session is closed")
	}
	if s.streamActive {
		s.drainStreamLocked()
	}
	s.mu.Unlock()

	timeout := s.timeout
	if len(timeoutOverride) > 0 {
		timeout = timeoutOverride[0]
	}
	if err := s.Send(req); err != nil {
		return nil, err
	}
	return s.receiveRaw(timeout)
}

// Close terminates the session: it sends an explicit close op (best
// effort), closes stdin so the child observes EOF, and waits briefly for
// exit. Close is idempotent.
func (s *Session) Close() error {
	var closeErr error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		if s.streamActive {
			s.drainStreamLocked()
		}
		s.closed = true
		s.mu.Unlock()

		_ = s.Send(map[string]any{"op": "close"})
		_ = s.stdin.Close()

		select {
		case <-s.exited:
		case <-time.After(5 * time.Second):
			_ = s.cmd.Process.Kill()
			<-s.exited
		}
		if err := s.io.Wait(); err != nil {
			log.Warn("bridge I/O goroutine reported an error during shutdown",
				log.F("session_id", s.id.String()), log.F("error", err.Error()))
		}
		unregister(s)
	})
	return closeErr
}

// ID returns the session's correlation identifier, used only in log
// output, never on the wire.
func (s *Session) ID() uuid.UUID { return s.id }
