package query

import (
	"encoding/json"
	"fmt"
)

// Call is one operation request: its name plus its op-specific fields,
// still packed as raw JSON. Both top-level session requests and each
// sub-request of a multi batch decode into this shape.
type Call struct {
	Op     string          `json:"op"`
	Fields json.RawMessage `json:"-"`
}

// UnmarshalJSON captures the op field and keeps the remaining object
// bytes available for op-specific decoding, since each op's fields
// differ.
func (c *Call) UnmarshalJSON(data []byte) error {
	var probe struct {
		Op string `json:"op"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	c.Op = probe.Op
	c.Fields = append(json.RawMessage(nil), data...)
	return nil
}

// ErrSessionClosed marks an engine that has processed a close op; any
// further Dispatch call returns ErrSessionClosed.
var ErrSessionClosed = &Error{Message: "session is closed"}

// Dispatch decodes and executes a single non-streaming operation call,
// returning a JSON-serializable result. iter_section's streaming frames
// are handled separately by the session server via IterSectionStart/
// StreamNext/DrainStream, not through Dispatch.
func (e *Engine) Dispatch(call Call) (any, error) {
	if e.closed {
		return nil, ErrSessionClosed
	}
	switch call.Op {
	case "extract_sections":
		var p struct {
			Sections []string `json:"sections"`
		}
		if err := json.Unmarshal(call.Fields, &p); err != nil {
			return nil, &Error{Message: err.Error()}
		}
		return map[string]any{"sections": e.ExtractSections(p.Sections)}, nil

	case "get_entry":
		var p struct {
			Section string `json:"section"`
			Key     string `json:"key"`
		}
		if err := json.Unmarshal(call.Fields, &p); err != nil {
			return nil, &Error{Message: err.Error()}
		}
		if p.Section == "" {
			return nil, fieldMissing("section")
		}
		if p.Key == "" {
			return nil, fieldMissing("key")
		}
		return e.GetEntry(p.Section, p.Key), nil

	case "get_entries":
		var p struct {
			Section string   `json:"section"`
			Keys    []string `json:"keys"`
			Fields  []string `json:"fields"`
		}
		if err := json.Unmarshal(call.Fields, &p); err != nil {
			return nil, &Error{Message: err.Error()}
		}
		if p.Section == "" {
			return nil, fieldMissing("section")
		}
		return map[string]any{"entries": e.GetEntries(p.Section, p.Keys, p.Fields)}, nil

	case "count_keys":
		var p struct {
			Keys []string `json:"keys"`
		}
		if err := json.Unmarshal(call.Fields, &p); err != nil {
			return nil, &Error{Message: err.Error()}
		}
		return map[string]any{"counts": e.CountKeys(p.Keys)}, nil

	case "contains_tokens":
		var p struct {
			Tokens []string `json:"tokens"`
		}
		if err := json.Unmarshal(call.Fields, &p); err != nil {
			return nil, &Error{Message: err.Error()}
		}
		result, err := e.ContainsTokens(p.Tokens)
		if err != nil {
			return nil, err
		}
		return map[string]any{"matches": result}, nil

	case "contains_kv":
		var p struct {
			Pairs [][2]string `json:"pairs"`
		}
		if err := json.Unmarshal(call.Fields, &p); err != nil {
			return nil, &Error{Message: err.Error()}
		}
		pairs := make([]ContainsKVPair, len(p.Pairs))
		for i, pr := range p.Pairs {
			pairs[i] = ContainsKVPair{Key: pr[0], Value: pr[1]}
		}
		return map[string]any{"matches": e.ContainsKV(pairs)}, nil

	case "get_country_summaries":
		var p struct {
			Fields []string `json:"fields"`
		}
		if err := json.Unmarshal(call.Fields, &p); err != nil {
			return nil, &Error{Message: err.Error()}
		}
		return map[string]any{"countries": e.GetCountrySummaries(p.Fields)}, nil

	case "get_duplicate_values":
		var p struct {
			Section string `json:"section"`
			Key     string `json:"key"`
			Field   string `json:"field"`
		}
		if err := json.Unmarshal(call.Fields, &p); err != nil {
			return nil, &Error{Message: err.Error()}
		}
		return map[string]any{"values": e.GetDuplicateValues(p.Section, p.Key, p.Field)}, nil

	case "get_entry_text":
		var p struct {
			Section string `json:"section"`
			Key     string `json:"key"`
		}
		if err := json.Unmarshal(call.Fields, &p); err != nil {
			return nil, &Error{Message: err.Error()}
		}
		text, ok := e.GetEntryText(p.Section, p.Key)
		return map[string]any{"found": ok, "text": text}, nil

	case "iter_section", "close", "multi":
		return nil, &Error{Message: fmt.Sprintf("op %q is not valid inside multi", call.Op)}

	default:
		return nil, &Error{Message: fmt.Sprintf("unknown op %q", call.Op)}
	}
}

// Multi implements op 11: it executes each call in order against this
// engine and collects one result per call. iter_section and close (and
// nested multi) are rejected as sub-ops; a rejected sub-op's error is
// reported in that slot rather than aborting the whole batch.
func (e *Engine) Multi(calls []Call) ([]any, error) {
	if e.closed {
		return nil, ErrSessionClosed
	}
	out := make([]any, len(calls))
	for i, call := range calls {
		result, err := e.Dispatch(call)
		if err != nil {
			out[i] = map[string]any{"ok": false, "message": err.Error()}
			continue
		}
		out[i] = result
	}
	return out, nil
}

// Close implements op 12: it marks the session closed. Any operation
// dispatched afterward, including another close, returns
// ErrSessionClosed.
func (e *Engine) Close() {
	e.stream = nil
	e.closed = true
}
