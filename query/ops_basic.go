package query

import "github.com/neper-stars/clausewitz/tree"

// ExtractSections implements op 1: extract_sections. Unknown names map to
// an empty object rather than an error.
func (e *Engine) ExtractSections(sections []string) map[string]any {
	out := make(map[string]any, len(sections))
	for _, name := range sections {
		v, ok := e.idx.Section(name)
		if !ok {
			out[name] = map[string]any{}
			continue
		}
		out[name] = v.Raw()
	}
	return out
}

// GetEntryResult is the result shape of op 3: get_entry.
type GetEntryResult struct {
	Found bool `json:"found"`
	Entry any  `json:"entry,omitempty"`
}

// GetEntry implements op 3: get_entry.
func (e *Engine) GetEntry(section, key string) GetEntryResult {
	v, ok := e.idx.Entry(section, key)
	if !ok {
		return GetEntryResult{Found: false}
	}
	return GetEntryResult{Found: true, Entry: v.Raw()}
}

// GetEntries implements op 4: get_entries. When fields is non-empty, each
// result is projected to only those fields (plus the key); missing keys
// are silently omitted.
func (e *Engine) GetEntries(section string, keys []string, fields []string) []map[string]any {
	out := make([]map[string]any, 0, len(keys))
	for _, key := range keys {
		v, ok := e.idx.Entry(section, key)
		if !ok {
			continue
		}
		if len(fields) == 0 {
			m := map[string]any{"key": key}
			if v.Kind == tree.KindObject {
				for fk, fv := range v.Object.RawMap() {
					m[fk] = fv
				}
			} else {
				m["value"] = v.Raw()
			}
			out = append(out, m)
			continue
		}
		projected := map[string]any{"key": key}
		if v.Kind == tree.KindObject {
			for _, f := range fields {
				if fv, ok := v.Object.Get(f); ok {
					projected[f] = fv.Raw()
				}
			}
		}
		out = append(out, projected)
	}
	return out
}

// CountKeys implements op 5: count_keys. It traverses the entire document
// tree counting occurrences of each named key, anywhere in the document.
func (e *Engine) CountKeys(keys []string) map[string]int {
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	counts := make(map[string]int, len(keys))
	for _, k := range keys {
		counts[k] = 0
	}
	walkObject(e.idx.Document(), func(key string, v tree.Value) {
		if want[key] {
			counts[key]++
		}
	})
	return counts
}

// walkObject performs a full-tree traversal over o and every descendant
// object/list, invoking visit for each key=value entry encountered,
// including nested ones.
func walkObject(o *tree.Object, visit func(key string, v tree.Value)) {
	if o == nil {
		return
	}
	for _, entry := range o.Entries {
		visit(entry.Key, entry.Value)
		walkValue(entry.Value, visit)
	}
}

func walkValue(v tree.Value, visit func(key string, v tree.Value)) {
	switch v.Kind {
	case tree.KindObject:
		walkObject(v.Object, visit)
	case tree.KindList:
		for _, item := range v.List {
			walkValue(item, visit)
		}
	}
}

// GetDuplicateValues implements op 9: get_duplicate_values. It returns the
// ordered list of all values of field inside entry section[key].
func (e *Engine) GetDuplicateValues(section, key, field string) []any {
	v, ok := e.idx.Entry(section, key)
	if !ok || v.Kind != tree.KindObject {
		return nil
	}
	all := v.Object.All(field)
	out := make([]any, len(all))
	for i, val := range all {
		out[i] = val.Raw()
	}
	return out
}

// GetEntryText implements op 10: get_entry_text. It returns the raw
// substring from the original gamestate text spanning the entry's block,
// without re-serializing the parsed tree.
func (e *Engine) GetEntryText(section, key string) (string, bool) {
	v, ok := e.idx.Entry(section, key)
	if !ok {
		return "", false
	}
	if v.Start < 0 || v.End > len(e.gamestate) || v.Start > v.End {
		return "", false
	}
	return e.gamestate[v.Start:v.End], true
}

// GetCountrySummaries implements op 8: get_country_summaries. Entries
// whose value is the sentinel "none" are skipped.
func (e *Engine) GetCountrySummaries(fields []string) []map[string]any {
	countries := e.sectionObject("country")
	if countries == nil {
		return nil
	}
	out := make([]map[string]any, 0, len(countries.Entries))
	for _, id := range countries.Keys() {
		v, _ := countries.Get(id)
		if v.IsNone() {
			continue
		}
		row := map[string]any{"id": id}
		if v.Kind == tree.KindObject {
			if len(fields) == 0 {
				for fk, fv := range v.Object.RawMap() {
					row[fk] = fv
				}
			} else {
				for _, f := range fields {
					if fv, ok := v.Object.Get(f); ok {
						row[f] = fv.Raw()
					}
				}
			}
		}
		out = append(out, row)
	}
	return out
}

// ContainsKVPair is one [key, value] pair checked by contains_kv.
type ContainsKVPair struct {
	Key   string
	Value string
}

// ContainsKV implements op 7: contains_kv. It performs a structural,
// whitespace-insensitive key=value existence check over the parsed tree:
// true if any entry anywhere in the document has that exact key bound to
// a scalar whose textual form equals value.
func (e *Engine) ContainsKV(pairs []ContainsKVPair) map[string]bool {
	out := make(map[string]bool, len(pairs))
	wantKey := make(map[string][]string, len(pairs))
	for _, p := range pairs {
		wantKey[p.Key] = append(wantKey[p.Key], p.Value)
		out[p.Key+"="+p.Value] = false
	}
	walkObject(e.idx.Document(), func(key string, v tree.Value) {
		values, ok := wantKey[key]
		if !ok {
			return
		}
		text := v.AsKeyText()
		for _, want := range values {
			if text == want {
				out[key+"="+want] = true
			}
		}
	})
	return out
}
