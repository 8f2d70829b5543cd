package session_test

import (
	"archive/zip"
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neper-stars/clausewitz/session"
)

func writeTestArchive(t *testing.T, gamestate string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "save.sav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	meta, err := zw.Create("meta")
	require.NoError(t, err)
	_, err = meta.Write([]byte(`version="1.0"`))
	require.NoError(t, err)

	gs, err := zw.Create("gamestate")
	require.NoError(t, err)
	_, err = gs.Write([]byte(gamestate))
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	return path
}

func runLines(t *testing.T, srv *session.Server, lines ...string) []map[string]any {
	t.Helper()
	input := strings.Join(lines, "\n") + "\n"
	var out bytes.Buffer
	srv.Run(strings.NewReader(input), &out)

	var responses []map[string]any
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		if len(bytes.TrimSpace(scanner.Bytes())) == 0 {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &m))
		responses = append(responses, m)
	}
	return responses
}

func TestSessionBasicRequestResponse(t *testing.T) {
	path := writeTestArchive(t, `country={ 1={ name="Humanity" } }`)
	srv, exitCode, err := session.Load(path)
	require.NoError(t, err)
	require.Equal(t, session.ExitOK, exitCode)

	responses := runLines(t, srv, `{"op":"extract_sections","sections":["country"]}`)
	require.Len(t, responses, 1)
	assert.Equal(t, true, responses[0]["ok"])
	assert.Contains(t, responses[0], "sections")
}

func TestSessionMalformedRequestReportsError(t *testing.T) {
	path := writeTestArchive(t, `country={ 1={ name="Humanity" } }`)
	srv, _, err := session.Load(path)
	require.NoError(t, err)

	responses := runLines(t, srv, `not json`)
	require.Len(t, responses, 1)
	assert.Equal(t, false, responses[0]["ok"])
}

func TestSessionIterSectionFramesAndTerminator(t *testing.T) {
	path := writeTestArchive(t, `fleet={ 1={ name="A" } 2={ name="B" } }`)
	srv, _, err := session.Load(path)
	require.NoError(t, err)

	responses := runLines(t, srv, `{"op":"iter_section","section":"fleet","batch_size":1}`)
	require.GreaterOrEqual(t, len(responses), 3)
	assert.Equal(t, true, responses[0]["stream"])
	last := responses[len(responses)-1]
	assert.Equal(t, true, last["done"])

	// batch_size:1 must use the singular {"entry": ...} frame shape, not
	// a one-element {"entries": [...]} list.
	dataFrames := responses[1 : len(responses)-1]
	require.Len(t, dataFrames, 2)
	for _, frame := range dataFrames {
		assert.Contains(t, frame, "entry")
		assert.NotContains(t, frame, "entries")
	}
}

func TestSessionIterSectionBatchedUsesPluralFrameShape(t *testing.T) {
	path := writeTestArchive(t, `fleet={ 1={ name="A" } 2={ name="B" } }`)
	srv, _, err := session.Load(path)
	require.NoError(t, err)

	responses := runLines(t, srv, `{"op":"iter_section","section":"fleet","batch_size":64}`)
	require.GreaterOrEqual(t, len(responses), 3)

	dataFrames := responses[1 : len(responses)-1]
	require.Len(t, dataFrames, 1)
	assert.Contains(t, dataFrames[0], "entries")
	assert.NotContains(t, dataFrames[0], "entry")
}

func TestSessionCloseRejectsFurtherOps(t *testing.T) {
	path := writeTestArchive(t, `country={ 1={ name="Humanity" } }`)
	srv, _, err := session.Load(path)
	require.NoError(t, err)

	responses := runLines(t, srv,
		`{"op":"close"}`,
		`{"op":"count_keys","keys":["name"]}`,
	)
	require.Len(t, responses, 2)
	assert.Equal(t, true, responses[0]["closed"])
	assert.Equal(t, false, responses[1]["ok"])
}

func TestSessionArchiveLoadFailureReturnsExitCode(t *testing.T) {
	_, exitCode, err := session.Load(filepath.Join(t.TempDir(), "missing.sav"))
	require.Error(t, err)
	assert.Equal(t, session.ExitArchiveError, exitCode)
}
