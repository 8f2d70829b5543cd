// Package clausewitz re-exports the package-level types most consumers
// need so they can import a single path instead of every sub-package
// directly. The sub-packages (archive, token, tree, index, query,
// resolve, protocol, session, bridge, signals) remain independently
// importable for callers that want a narrower surface.
package clausewitz

import (
	"github.com/neper-stars/clausewitz/archive"
	"github.com/neper-stars/clausewitz/bridge"
	"github.com/neper-stars/clausewitz/query"
	"github.com/neper-stars/clausewitz/resolve"
	"github.com/neper-stars/clausewitz/session"
	"github.com/neper-stars/clausewitz/signals"
	"github.com/neper-stars/clausewitz/tree"
)

type (
	// Document is the parsed form of one Clausewitz text blob.
	Document = tree.Object

	// Value is a single node of a Document.
	Value = tree.Value

	// Archive is a decoded save container.
	Archive = archive.Archive

	// Engine evaluates the query operation set against a parsed document.
	Engine = query.Engine

	// Session is a spawned parser server process, reached through the
	// client bridge.
	Session = bridge.Session

	// Resolved is the outcome of resolving a raw name into display text.
	Resolved = resolve.Resolved

	// Server is the in-process session request loop.
	Server = session.Server

	// SnapshotSignals is the normalized per-session output document.
	SnapshotSignals = signals.SnapshotSignals
)

// OpenArchive opens the save archive at path and decodes its two
// logical members.
func OpenArchive(path string) (*Archive, error) {
	return archive.Open(path)
}

// NewSession spawns a parser server for the archive at path.
func NewSession(path string, opts ...bridge.Option) (*Session, error) {
	return bridge.New(path, opts...)
}
