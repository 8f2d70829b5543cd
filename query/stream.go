package query

import "github.com/neper-stars/clausewitz/tree"

// sectionStream is the engine's at-most-one active iter_section stream.
// Only one stream may be open per session at a time; starting a new one
// while another is active is a StreamError.
type sectionStream struct {
	section   string
	entries   []tree.Entry
	pos       int
	batchSize int
}

// StreamEntry is one {key, value} pair emitted by a section stream.
type StreamEntry struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// IterSectionStart implements the non-streaming half of op 2:
// iter_section. It opens a stream over section's entries in source order
// and returns only an error (nil on success); callers then repeatedly call
// StreamNext to pull data frames. Only one stream may be open at a time.
func (e *Engine) IterSectionStart(section string, batchSize int) error {
	if e.closed {
		return ErrSessionClosed
	}
	if e.stream != nil {
		return &StreamError{Message: "a stream is already active on this session"}
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	obj := e.sectionObject(section)
	var entries []tree.Entry
	if obj != nil {
		entries = obj.Entries
	}
	e.stream = &sectionStream{section: section, entries: entries, batchSize: batchSize}
	return nil
}

// StreamActive reports whether a stream is currently open.
func (e *Engine) StreamActive() bool {
	return e.stream != nil
}

// StreamSection returns the section name of the active stream, if any.
func (e *Engine) StreamSection() (string, bool) {
	if e.stream == nil {
		return "", false
	}
	return e.stream.section, true
}

// StreamNext returns the next data frame. done is true once the stream is
// exhausted; entries is nil in that case and the stream is closed
// automatically (StreamActive becomes false), matching the terminator
// frame being the last frame before a new request may dispatch normally.
func (e *Engine) StreamNext() (entries []StreamEntry, done bool) {
	if e.stream == nil {
		return nil, true
	}
	s := e.stream
	if s.pos >= len(s.entries) {
		e.stream = nil
		return nil, true
	}
	end := s.pos + s.batchSize
	if end > len(s.entries) {
		end = len(s.entries)
	}
	batch := s.entries[s.pos:end]
	s.pos = end
	out := make([]StreamEntry, len(batch))
	for i, entry := range batch {
		out[i] = StreamEntry{Key: entry.Key, Value: entry.Value.Raw()}
	}
	if s.pos >= len(s.entries) {
		e.stream = nil
	}
	return out, false
}

// DrainStream discards all remaining frames of the active stream without
// serializing them, implementing the server-side half of drain-on-break:
// when the client abandons an iter_section before consuming the
// terminator, the next non-stream request first drains silently.
func (e *Engine) DrainStream() {
	e.stream = nil
}
