package bridge_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/neper-stars/clausewitz/bridge"
)

// TestMain checks that every Session's reader/stderr-drain goroutines exit
// once the test binary is done spawning and closing sessions.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeServerScript is a tiny echo server standing in for a real parser
// binary: it reads one JSON line and replies {"ok":true,"echoed":true},
// except for "op":"iter_section" which emits a short canned stream, and
// "op":"close" which exits.
const fakeServerScript = `#!/bin/sh
while IFS= read -r line; do
  case "$line" in
    *'"op":"iter_section"'*)
      echo '{"ok":true,"stream":true,"section":"fleet"}'
      echo '{"ok":true,"entries":[{"key":"1","value":{}}]}'
      echo '{"ok":true,"done":true}'
      ;;
    *'"op":"close"'*)
      echo '{"ok":true,"closed":true}'
      exit 0
      ;;
    *)
      echo '{"ok":true,"echoed":true}'
      ;;
  esac
done
`

func writeFakeServer(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake server script is a POSIX shell script")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "fake-parser.sh")
	require.NoError(t, os.WriteFile(path, []byte(fakeServerScript), 0o755))
	return path
}

func TestSessionCallRoundTrip(t *testing.T) {
	bin := writeFakeServer(t)
	s, err := bridge.New("unused.sav", bridge.WithBinary(bin), bridge.WithTimeout(2*time.Second))
	require.NoError(t, err)
	defer s.Close()

	resp, err := s.Call(map[string]any{"op": "get_entry", "section": "country", "key": "1"})
	require.NoError(t, err)
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, true, resp["echoed"])
}

func TestSessionIterSectionStream(t *testing.T) {
	bin := writeFakeServer(t)
	s, err := bridge.New("unused.sav", bridge.WithBinary(bin), bridge.WithTimeout(2*time.Second))
	require.NoError(t, err)
	defer s.Close()

	stream, err := s.IterSection("fleet", 1)
	require.NoError(t, err)

	var frames int
	for {
		_, done, err := stream.Next()
		require.NoError(t, err)
		if done {
			break
		}
		frames++
	}
	assert.Equal(t, 1, frames)
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	bin := writeFakeServer(t)
	s, err := bridge.New("unused.sav", bridge.WithBinary(bin), bridge.WithTimeout(2*time.Second))
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestFindBinaryMissing(t *testing.T) {
	t.Setenv("PARSER_BINARY", "")
	t.Setenv("PATH", t.TempDir())
	_, err := bridge.FindBinary()
	assert.ErrorIs(t, err, bridge.ErrBinaryNotFound)
}
