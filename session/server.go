// Package session implements the Session Server: a line-delimited JSON
// request/response loop over stdin/stdout, backed by one Query Engine
// over one already-loaded archive. One process serves one document to
// one client for its whole lifetime.
package session

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/neper-stars/clausewitz/archive"
	"github.com/neper-stars/clausewitz/index"
	"github.com/neper-stars/clausewitz/log"
	"github.com/neper-stars/clausewitz/protocol"
	"github.com/neper-stars/clausewitz/query"
	"github.com/neper-stars/clausewitz/tree"
)

// Exit codes returned by Load and Run, matching the protocol's documented
// process-level failure modes.
const (
	ExitOK             = 0
	ExitArchiveError   = 1
	ExitParseError     = 2
	ExitProtocolError  = 3
	defaultStreamBatch = 64
)

// Server runs the request loop for one loaded document.
type Server struct {
	engine *query.Engine
	out    *bufio.Writer
	log    log.Logger
}

// Engine exposes the underlying Query Engine for one-shot CLI commands
// (extract-save, iter-save) that need direct access without going
// through the line-delimited request loop.
func (s *Server) Engine() *query.Engine {
	return s.engine
}

// Load opens the archive at path, parses both members, and builds the
// query engine. It returns a non-nil exit code alongside the error so
// callers can report ExitArchiveError or ExitParseError to the process
// exit status without re-classifying the error themselves.
func Load(path string) (*Server, int, error) {
	arc, err := archive.Open(path)
	if err != nil {
		return nil, ExitArchiveError, err
	}
	gamestateDoc, err := tree.Build([]byte(arc.Gamestate))
	if err != nil {
		return nil, ExitParseError, err
	}
	idx := index.Build(gamestateDoc)
	eng := query.New(idx, arc.Meta, arc.Gamestate)
	return &Server{engine: eng, log: log.GetLogger()}, ExitOK, nil
}

// Run drives the request/response loop: it reads newline-delimited JSON
// requests from r and writes newline-delimited JSON responses to w until
// r is exhausted or a fatal protocol error occurs. It returns the
// process exit code to use.
func (s *Server) Run(r io.Reader, w io.Writer) int {
	s.out = bufio.NewWriter(w)
	defer s.out.Flush()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(trimSpace(line)) == 0 {
			continue
		}
		if err := s.handleLine(line); err != nil {
			s.writeErr(err.Error(), nil, nil, nil)
			return ExitProtocolError
		}
		s.out.Flush()
	}
	if err := scanner.Err(); err != nil {
		s.log.Error("session input read failed", log.F("error", err.Error()))
		return ExitProtocolError
	}
	return ExitOK
}

func (s *Server) handleLine(line []byte) error {
	// A stream left open from a prior iter_section that the client
	// abandoned mid-read is drained silently before handling the new
	// request, per the protocol's drain-on-break rule.
	if s.engine.StreamActive() {
		s.engine.DrainStream()
	}

	req, err := protocol.DecodeRequest(line)
	if err != nil {
		s.writeErr("malformed request: "+err.Error(), nil, nil, nil)
		return nil
	}

	switch req.Op {
	case "iter_section":
		return s.handleIterSection(req)
	case "multi":
		return s.handleMulti(req)
	case "close":
		s.engine.Close()
		s.writeOK(map[string]any{"closed": true})
		return nil
	default:
		call := query.Call{Op: req.Op, Fields: req.Raw}
		result, err := s.engine.Dispatch(call)
		if err != nil {
			s.writeErr(err.Error(), nil, nil, nil)
			return nil
		}
		s.writeOK(result)
		return nil
	}
}

func (s *Server) handleIterSection(req protocol.Request) error {
	var p struct {
		Section   string `json:"section"`
		BatchSize int    `json:"batch_size"`
	}
	if err := json.Unmarshal(req.Raw, &p); err != nil {
		s.writeErr("malformed iter_section request: "+err.Error(), nil, nil, nil)
		return nil
	}
	if p.BatchSize <= 0 {
		p.BatchSize = defaultStreamBatch
	}
	if err := s.engine.IterSectionStart(p.Section, p.BatchSize); err != nil {
		s.writeErr(err.Error(), nil, nil, nil)
		return nil
	}
	s.writeLine(protocol.StreamHeader{Ok: true, Stream: true, Section: p.Section})
	singular := p.BatchSize <= 1
	for {
		batch, done := s.engine.StreamNext()
		if done {
			break
		}
		if singular {
			for _, entry := range batch {
				s.writeLine(map[string]any{"ok": true, "entry": entry})
			}
			continue
		}
		s.writeLine(map[string]any{"ok": true, "entries": batch})
	}
	s.writeLine(protocol.StreamTerminator{Ok: true, Done: true})
	return nil
}

func (s *Server) handleMulti(req protocol.Request) error {
	var p struct {
		Calls []query.Call `json:"calls"`
	}
	if err := json.Unmarshal(req.Raw, &p); err != nil {
		s.writeErr("malformed multi request: "+err.Error(), nil, nil, nil)
		return nil
	}
	results, err := s.engine.Multi(p.Calls)
	if err != nil {
		s.writeErr(err.Error(), nil, nil, nil)
		return nil
	}
	s.writeOK(map[string]any{"results": results})
	return nil
}

func (s *Server) writeOK(payload any) {
	s.writeLine(protocol.OK(payload))
}

func (s *Server) writeErr(message string, line, col, exitCode *int) {
	s.writeLine(protocol.Err(message, line, col, exitCode))
}

func (s *Server) writeLine(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Error("failed to encode response", log.F("error", err.Error()))
		return
	}
	s.out.Write(b)
	s.out.WriteByte('\n')
}

func trimSpace(b []byte) []byte {
	start, end := 0, len(b)
	for start < end && isSpace(b[start]) {
		start++
	}
	for end > start && isSpace(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
