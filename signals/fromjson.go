package signals

import (
	"fmt"
	"strconv"

	"github.com/neper-stars/clausewitz/tree"
)

// fromJSON rebuilds a tree.Value from a value decoded off the wire
// (json.Unmarshal into any), so resolve.Resolve can be applied
// client-side to name blocks the engine returned as plain JSON. The
// wire protocol carries no duplicate-key information, so an object
// whose source repeated a key collapses to its last occurrence here,
// same as Object.Get already does for every other consumer.
func fromJSON(v any) tree.Value {
	switch val := v.(type) {
	case nil:
		return tree.Identifier("none", 0, 0)
	case bool:
		if val {
			return tree.Identifier("yes", 0, 0)
		}
		return tree.Identifier("no", 0, 0)
	case string:
		return tree.String(val, 0, 0)
	case float64:
		if val == float64(int64(val)) {
			n := int64(val)
			return tree.Integer(strconv.FormatInt(n, 10), n, 0, 0)
		}
		return tree.Number(strconv.FormatFloat(val, 'g', -1, 64), val, 0, 0)
	case map[string]any:
		entries := make([]tree.Entry, 0, len(val))
		for k, vv := range val {
			entries = append(entries, tree.Entry{Key: k, Value: fromJSON(vv)})
		}
		return tree.Obj(tree.NewObject(entries), 0, 0)
	case []any:
		items := make([]tree.Value, len(val))
		for i, it := range val {
			items[i] = fromJSON(it)
		}
		return tree.List(items, 0, 0)
	default:
		return tree.Identifier(fmt.Sprint(val), 0, 0)
	}
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "yes"
	default:
		return false
	}
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func asInt(v any) int {
	return int(asFloat(v))
}

func asIntPtr(v any) *int {
	switch n := v.(type) {
	case float64:
		i := int(n)
		return &i
	default:
		return nil
	}
}

func asStringPtr(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}
