package signals

import (
	"sort"
	"strconv"

	"github.com/neper-stars/clausewitz/tree"
)

// valuePtr is a small convenience so a freshly built tree.Value can be
// passed to resolve.Resolve, which takes a pointer.
func valuePtr(v tree.Value) *tree.Value {
	return &v
}

// asKeyText renders a decoded JSON scalar (string, float64, bool) as the
// plain text form used for section entry keys.
func asKeyText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatInt(int64(val), 10)
	default:
		return ""
	}
}

func parseIntLoose(s string) (int, error) {
	return strconv.Atoi(s)
}

// countryListContains reports whether id appears as the "country" field
// of any element of a war's attackers/defenders list.
func countryListContains(list any, id int) bool {
	for _, raw := range asSlice(list) {
		entry := asMap(raw)
		if entry == nil {
			continue
		}
		if cid, ok := entry["country"]; ok && asInt(cid) == id {
			return true
		}
	}
	return false
}

func dedupSortInts(in []int) []int {
	seen := make(map[int]bool, len(in))
	out := make([]int, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

func dedupSortStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
