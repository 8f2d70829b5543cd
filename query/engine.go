// Package query implements the Query Engine: the operation set defined in
// §4.5, evaluated against the parsed tree and the Section Index to
// produce JSON-shaped results.
package query

import (
	"fmt"

	"github.com/neper-stars/clausewitz/index"
	"github.com/neper-stars/clausewitz/tree"
)

// Error is returned for a well-formed request with invalid arguments: an
// unknown op or a missing required field. It is a single non-fatal
// response frame; the session continues afterward.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// StreamError reports a streaming protocol violation, such as attempting
// to open a second stream while one is already active.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string { return e.Message }

// Engine evaluates query operations against one parsed document. Its only
// mutable state is at most one active stream and a closed flag, matching the
// session's "one document, one client, no locks" concurrency model.
type Engine struct {
	idx       *index.Index
	gamestate string // raw gamestate text, for get_entry_text and contains_tokens
	meta      string

	stream *sectionStream
	closed bool
}

// New constructs a Query Engine over an already-built Section Index and
// the raw decoded text of the two archive members (needed for
// get_entry_text and contains_tokens, which operate on the original bytes
// rather than a re-serialization of the tree).
func New(idx *index.Index, metaText, gamestateText string) *Engine {
	return &Engine{idx: idx, meta: metaText, gamestate: gamestateText}
}

// sectionObject resolves a section name to its Object form, or nil if the
// section is absent or not object-shaped.
func (e *Engine) sectionObject(name string) *tree.Object {
	v, ok := e.idx.Section(name)
	if !ok || v.Kind != tree.KindObject {
		return nil
	}
	return v.Object
}

func fieldMissing(name string) error {
	return &Error{Message: fmt.Sprintf("missing required field %q", name)}
}
