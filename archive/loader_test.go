package archive

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestArchive(t *testing.T, meta, gamestate string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.sav")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{"meta": meta, "gamestate": gamestate} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestOpenDecodesBothMembers(t *testing.T) {
	path := writeTestArchive(t, `version="3.9"`, `player={ country=0 }`)
	a, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, `version="3.9"`, a.Meta)
	assert.Equal(t, `player={ country=0 }`, a.Gamestate)
}

func TestOpenMissingMemberIsArchiveError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.sav")
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("meta")
	w.Write([]byte("version=1"))
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	_, err := Open(path)
	require.Error(t, err)
	var aerr *Error
	require.ErrorAs(t, err, &aerr)
}

func TestOpenMalformedContainer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not-a-zip.sav")
	require.NoError(t, os.WriteFile(path, []byte("not a zip file"), 0o644))

	_, err := Open(path)
	require.Error(t, err)
}

func TestDecodeUTF8ReplacesInvalidSequences(t *testing.T) {
	invalid := []byte{'a', 0xff, 'b'}
	got := decodeUTF8(invalid)
	assert.Equal(t, "a�b", got)
}
