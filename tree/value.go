// Package tree implements the in-memory document model produced by parsing
// a Clausewitz text blob: a tagged sum of scalars, objects, and lists, with
// duplicate keys preserved in source order.
package tree

import "strconv"

// Kind identifies which alternative of the Value sum type is populated.
type Kind int

const (
	KindString Kind = iota
	KindIdentifier
	KindInteger
	KindNumber
	KindDate
	KindObject
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindIdentifier:
		return "identifier"
	case KindInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindObject:
		return "object"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// NullRef is the sentinel integer the format uses to mean "null reference".
const NullRef int64 = 4294967295

// Value is a node in the document tree. Exactly the fields relevant to Kind
// are populated; the rest are zero.
type Value struct {
	Kind Kind

	// Text holds the decoded textual form for String, Identifier and Date
	// kinds (quotes stripped for String, raw digits for Date), and the
	// original literal for Integer and Number kinds.
	Text string

	Int   int64
	Float float64

	Object *Object
	List   []Value

	// Start and End are byte offsets into the originating source text,
	// spanning exactly the tokens that produced this value. Used by
	// get_entry_text to return the raw substring without re-serializing.
	Start, End int
}

// String constructs a quoted-string scalar.
func String(text string, start, end int) Value {
	return Value{Kind: KindString, Text: text, Start: start, End: end}
}

// Identifier constructs a bare-word scalar (includes "yes", "no", "none",
// and arbitrary unquoted tokens).
func Identifier(text string, start, end int) Value {
	return Value{Kind: KindIdentifier, Text: text, Start: start, End: end}
}

// Integer constructs an integer scalar, retaining the original text so
// oversized or zero-padded literals round-trip.
func Integer(text string, n int64, start, end int) Value {
	return Value{Kind: KindInteger, Text: text, Int: n, Start: start, End: end}
}

// Number constructs a floating-point scalar.
func Number(text string, f float64, start, end int) Value {
	return Value{Kind: KindNumber, Text: text, Float: f, Start: start, End: end}
}

// Date constructs a date scalar in YYYY.MM.DD (or YYY.MM.DD) form.
func Date(text string, start, end int) Value {
	return Value{Kind: KindDate, Text: text, Start: start, End: end}
}

// Obj constructs an object-kind value wrapping an already-built Object.
func Obj(o *Object, start, end int) Value {
	return Value{Kind: KindObject, Object: o, Start: start, End: end}
}

// List constructs a list-kind value.
func List(items []Value, start, end int) Value {
	return Value{Kind: KindList, List: items, Start: start, End: end}
}

// IsNone reports whether the value is the bare identifier "none", the
// format's marker for an absent or deleted entry.
func (v Value) IsNone() bool {
	return v.Kind == KindIdentifier && v.Text == "none"
}

// IsNullRef reports whether the value is the sentinel integer 4294967295,
// the format's marker for a null reference.
func (v Value) IsNullRef() bool {
	return v.Kind == KindInteger && v.Int == int64(NullRef)
}

// Bool interprets the value as the format's yes/no boolean identifiers.
func (v Value) Bool() (value bool, ok bool) {
	if v.Kind != KindIdentifier {
		return false, false
	}
	switch v.Text {
	case "yes":
		return true, true
	case "no":
		return false, true
	default:
		return false, false
	}
}

// Raw renders the value as a JSON-ready Go value: string/int64/float64 for
// scalars (yes/no identifiers stay the strings "yes"/"no"),
// map[string]any for objects (last-write-wins per key, matching
// Object.Get), []any for lists.
func (v Value) Raw() any {
	switch v.Kind {
	case KindString, KindIdentifier, KindDate:
		return v.Text
	case KindInteger:
		return v.Int
	case KindNumber:
		return v.Float
	case KindObject:
		if v.Object == nil {
			return map[string]any{}
		}
		return v.Object.RawMap()
	case KindList:
		out := make([]any, len(v.List))
		for i, item := range v.List {
			out[i] = item.Raw()
		}
		return out
	default:
		return nil
	}
}

// Text representation of a scalar regardless of kind, for keys and display
// contexts that need a plain string (e.g. resolve.Resolve inputs).
func (v Value) AsKeyText() string {
	switch v.Kind {
	case KindString, KindIdentifier, KindDate:
		return v.Text
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindNumber:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	default:
		return ""
	}
}
