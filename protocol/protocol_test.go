package protocol_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neper-stars/clausewitz/protocol"
)

func TestDecodeRequestTolerantOfCRLF(t *testing.T) {
	req, err := protocol.DecodeRequest([]byte(`{"op":"get_entry","section":"meta"}` + "\r"))
	require.NoError(t, err)
	assert.Equal(t, "get_entry", req.Op)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(req.Raw, &fields))
	assert.Equal(t, "meta", fields["section"])
}

func TestDecodeRequestRejectsInvalidJSON(t *testing.T) {
	_, err := protocol.DecodeRequest([]byte(`not json`))
	assert.Error(t, err)
}

func TestOKFlattensPayloadFields(t *testing.T) {
	resp := protocol.OK(map[string]any{"keys": []string{"a", "b"}})

	b, err := json.Marshal(resp)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))

	assert.Equal(t, true, out["ok"])
	assert.Contains(t, out, "keys")
	assert.NotContains(t, out, "payload")
}

func TestErrIncludesOptionalFields(t *testing.T) {
	line, col, exitCode := 3, 5, 1
	resp := protocol.Err("bad token", &line, &col, &exitCode)

	b, err := json.Marshal(resp)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))

	assert.Equal(t, false, out["ok"])
	assert.Equal(t, "bad token", out["message"])
	assert.Equal(t, float64(3), out["line"])
	assert.Equal(t, float64(5), out["col"])
	assert.Equal(t, float64(1), out["exit_code"])
}

func TestErrOmitsNilOptionalFields(t *testing.T) {
	resp := protocol.Err("boom", nil, nil, nil)

	b, err := json.Marshal(resp)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))

	assert.NotContains(t, out, "line")
	assert.NotContains(t, out, "col")
	assert.NotContains(t, out, "exit_code")
}

func TestStreamHeaderAndTerminatorShapes(t *testing.T) {
	header := protocol.StreamHeader{Ok: true, Stream: true, Section: "country"}
	b, err := json.Marshal(header)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true,"stream":true,"section":"country"}`, string(b))

	terminator := protocol.StreamTerminator{Ok: true, Done: true}
	b, err = json.Marshal(terminator)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true,"done":true}`, string(b))
}
