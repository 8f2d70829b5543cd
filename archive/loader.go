// Package archive implements the Archive Loader: the only component
// permitted to touch the filesystem. It opens a save's zip container and
// decodes its two logical members, "meta" and "gamestate", as UTF-8 text,
// replacing invalid byte sequences rather than failing on them.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/neper-stars/clausewitz/log"
)

// Member names the two logical blobs every save archive must contain.
type Member string

const (
	Meta      Member = "meta"
	Gamestate Member = "gamestate"
)

// Error is raised for a malformed container or a missing required member.
// It is fatal to the session that encounters it.
type Error struct {
	Path    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("archive error: %s (%s): %v", e.Message, e.Path, e.Err)
	}
	return fmt.Sprintf("archive error: %s (%s)", e.Message, e.Path)
}

func (e *Error) Unwrap() error { return e.Err }

// Archive is an opened save container with its two members already
// decoded into memory as text.
type Archive struct {
	Meta      string
	Gamestate string
}

// Open reads the zip archive at path and decodes its meta and gamestate
// members. Both members are required; a missing member or a malformed
// container is reported as *Error.
func Open(path string) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &Error{Path: path, Message: "failed to open container", Err: err}
	}
	defer zr.Close()

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	meta, err := readMember(files, string(Meta))
	if err != nil {
		return nil, &Error{Path: path, Message: "missing or unreadable meta member", Err: err}
	}
	gamestate, err := readMember(files, string(Gamestate))
	if err != nil {
		return nil, &Error{Path: path, Message: "missing or unreadable gamestate member", Err: err}
	}

	log.Debug("loaded save archive",
		log.F("path", path),
		log.F("meta_size", humanize.Bytes(uint64(len(meta)))),
		log.F("gamestate_size", humanize.Bytes(uint64(len(gamestate)))),
	)

	return &Archive{Meta: decodeUTF8(meta), Gamestate: decodeUTF8(gamestate)}, nil
}

func readMember(files map[string]*zip.File, name string) ([]byte, error) {
	f, ok := files[name]
	if !ok {
		return nil, fmt.Errorf("member %q not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// decodeUTF8 decodes raw bytes as UTF-8, replacing each invalid sequence
// with U+FFFD rather than failing, per the format's "not strictly
// Unicode-clean" allowance. Unlike strings.ToValidUTF8, which collapses a
// run of invalid bytes into a single replacement, this inserts one
// replacement rune per malformed byte, matching bytes consumed one at a
// time by a naive decoder.
func decodeUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var out []rune
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			out = append(out, utf8.RuneError)
			i++
			continue
		}
		out = append(out, r)
		i += size
	}
	return string(out)
}
