package bridge

// Stream is a handle on one active iter_section data stream. Only one
// Stream may be open per Session at a time; starting a new one, or
// issuing Call, while a Stream is open and unread first drains it.
type Stream struct {
	s    *Session
	done bool
}

// IterSection opens a streaming request: section's entries are batched
// by the server into a header frame, N data frames, and a terminator
// frame. IterSection returns once the header has been read; callers
// then pull data frames via Next.
func (s *Session) IterSection(section string, batchSize int) (*Stream, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, s.parserError("session is closed")
	}
	if s.streamActive {
		s.drainStreamLocked()
	}
	s.mu.Unlock()

	req := map[string]any{"op": "iter_section", "section": section}
	if batchSize > 0 {
		req["batch_size"] = batchSize
	}
	if err := s.Send(req); err != nil {
		return nil, err
	}
	header, err := s.receiveRaw(s.timeout)
	if err != nil {
		return nil, err
	}
	if ok, _ := header["ok"].(bool); !ok {
		return nil, s.parserError("iter_section rejected: " + asString(header["message"]))
	}

	s.mu.Lock()
	s.streamActive = true
	s.mu.Unlock()
	return &Stream{s: s}, nil
}

// Next returns the next data frame. done is true once the terminator
// has been consumed; the stream is unusable afterward.
func (st *Stream) Next() (frame map[string]any, done bool, err error) {
	if st.done {
		return nil, true, nil
	}
	resp, err := st.s.receiveRaw(st.s.timeout)
	if err != nil {
		return nil, false, err
	}
	if doneFlag, _ := resp["done"].(bool); doneFlag {
		st.done = true
		st.s.mu.Lock()
		st.s.streamActive = false
		st.s.mu.Unlock()
		return nil, true, nil
	}
	return resp, false, nil
}

// Close discards any remaining frames without returning them to the
// caller, implementing the client-side half of drain-on-break for a
// caller that breaks out of iteration early.
func (st *Stream) Close() {
	if st.done {
		return
	}
	st.s.mu.Lock()
	st.s.drainStreamLocked()
	st.s.mu.Unlock()
	st.done = true
}

// drainStreamLocked reads and discards frames until the terminator.
// Callers hold s.mu; it is released while frames are read (receiveRaw
// has no lock dependency) and re-acquired before streamActive, which it
// guards, is cleared.
func (s *Session) drainStreamLocked() {
	s.mu.Unlock()
	for {
		resp, err := s.receiveRaw(s.timeout)
		if err != nil {
			break
		}
		if doneFlag, _ := resp["done"].(bool); doneFlag {
			break
		}
	}
	s.mu.Lock()
	s.streamActive = false
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
