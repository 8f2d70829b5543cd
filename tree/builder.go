package tree

import "github.com/neper-stars/clausewitz/token"

// item is one element accumulated inside an open block, in the order it
// was encountered. Key is nil for a bare scalar/list element.
type item struct {
	key   *string
	value Value
}

// frame is one entry in the builder's explicit stack, representing a
// currently-open block. assignedKey, if non-nil, is the key in the parent
// frame this block's resulting value will be attached to once closed; it is
// nil for the root document frame and for blocks that are themselves bare
// list elements.
type frame struct {
	items       []item
	pendingKey  *string
	assignedKey *string
	start       token.Pos
}

// tokenSource wraps a Lexer with a one-token pushback buffer, so a token
// read for lookahead (deciding whether an identifier or integer starts
// `key = value`)
// can be put back and processed normally by the main loop.
type tokenSource struct {
	lex      *token.Lexer
	buffered *token.Token
}

func (s *tokenSource) next() (token.Token, error) {
	if s.buffered != nil {
		t := *s.buffered
		s.buffered = nil
		return t, nil
	}
	return s.lex.Next()
}

func (s *tokenSource) pushback(t token.Token) {
	s.buffered = &t
}

// Build parses src (already decoded as UTF-8 text) into a document Object.
// Build never panics; malformed input is reported as a *token.ParseError.
// The builder is non-recursive: block nesting is tracked on an explicit
// stack, so documents with deep nesting cannot overflow the goroutine
// stack.
func Build(src []byte) (*Object, error) {
	src0 := &tokenSource{lex: token.New(src)}
	stack := []*frame{{start: token.Pos{Line: 1, Col: 1}}}

	for {
		tok, err := src0.next()
		if err != nil {
			return nil, err
		}

		top := stack[len(stack)-1]

		switch tok.Kind {
		case token.EOF:
			if len(stack) != 1 {
				return nil, &token.ParseError{Message: "unterminated block", Pos: top.start}
			}
			return closeFrame(top), nil

		case token.RBrace:
			if len(stack) == 1 {
				return nil, &token.ParseError{Message: "unexpected '}'", Pos: tok.Start}
			}
			stack = stack[:len(stack)-1]
			closedVal := valueFromFrame(top, top.start, tok.End)
			parent := stack[len(stack)-1]
			attach(parent, top.assignedKey, closedVal)

		case token.LBrace:
			nf := &frame{start: tok.Start}
			if top.pendingKey != nil {
				nf.assignedKey = top.pendingKey
				top.pendingKey = nil
			}
			stack = append(stack, nf)

		case token.Identifier:
			if top.pendingKey != nil {
				v := Identifier(tok.Text, tok.Start.Offset, tok.End.Offset)
				attach(top, top.pendingKey, v)
				top.pendingKey = nil
				continue
			}
			next, nerr := src0.next()
			if nerr != nil {
				return nil, nerr
			}
			if next.Kind == token.Equals {
				key := tok.Text
				top.pendingKey = &key
				continue
			}
			// Not an assignment: tok is a bare scalar list element. Push
			// the lookahead token back so it is re-examined fresh on the
			// next iteration (it may itself start a new assignment).
			top.items = append(top.items, item{value: Identifier(tok.Text, tok.Start.Offset, tok.End.Offset)})
			src0.pushback(next)

		case token.String:
			attachScalar(top, String(tok.Text, tok.Start.Offset, tok.End.Offset))

		case token.Integer:
			v := Integer(tok.Text, tok.Int, tok.Start.Offset, tok.End.Offset)
			if top.pendingKey == nil {
				// Integer keys (entry IDs such as `1={...}`) are
				// recognised the same way as identifier keys.
				next, nerr := src0.next()
				if nerr != nil {
					return nil, nerr
				}
				if next.Kind == token.Equals {
					key := tok.Text
					top.pendingKey = &key
					continue
				}
				src0.pushback(next)
			}
			attachScalar(top, v)

		case token.Number:
			attachScalar(top, Number(tok.Text, tok.Float, tok.Start.Offset, tok.End.Offset))

		case token.Date:
			attachScalar(top, Date(tok.Text, tok.Start.Offset, tok.End.Offset))

		case token.Equals:
			return nil, &token.ParseError{Message: "unexpected '='", Pos: tok.Start}

		default:
			return nil, &token.ParseError{Message: "unexpected token", Pos: tok.Start}
		}
	}
}

// attach appends v to f.items, keyed by key if non-nil, else as a bare
// list element.
func attach(f *frame, key *string, v Value) {
	if key != nil {
		f.items = append(f.items, item{key: key, value: v})
		return
	}
	f.items = append(f.items, item{value: v})
}

// attachScalar attaches a scalar either as the value of a pending
// key=value assignment, or as a bare list element.
func attachScalar(f *frame, v Value) {
	if f.pendingKey != nil {
		key := f.pendingKey
		f.pendingKey = nil
		attach(f, key, v)
		return
	}
	attach(f, nil, v)
}

// valueFromFrame disambiguates a just-closed block as object or list: the
// presence of any keyed item means object, per §4.3's "resolved at close,
// not open" rule. Mixed content (both keyed and bare items) is tolerated
// and represented as an object whose bare items are gathered under an
// implicit positional key.
func valueFromFrame(f *frame, start, end token.Pos) Value {
	hasKey := false
	for _, it := range f.items {
		if it.key != nil {
			hasKey = true
			break
		}
	}

	if !hasKey {
		vals := make([]Value, len(f.items))
		for i, it := range f.items {
			vals[i] = it.value
		}
		return List(vals, start.Offset, end.Offset)
	}

	entries := toEntries(f.items)
	return Obj(NewObject(entries), start.Offset, end.Offset)
}

func toEntries(items []item) []Entry {
	entries := make([]Entry, 0, len(items))
	implicitIdx := 0
	for _, it := range items {
		if it.key != nil {
			entries = append(entries, Entry{Key: *it.key, Value: it.value})
		} else {
			entries = append(entries, Entry{Key: implicitKey(implicitIdx), Value: it.value})
			implicitIdx++
		}
	}
	return entries
}

func implicitKey(i int) string {
	const digits = "0123456789"
	if i < 10 {
		return string(digits[i])
	}
	var buf []byte
	n := i
	for n > 0 {
		buf = append([]byte{digits[n%10]}, buf...)
		n /= 10
	}
	return string(buf)
}

// closeFrame finalizes the root document frame at EOF. The document is
// always represented as an object even if it happens to contain zero
// assignments.
func closeFrame(f *frame) *Object {
	return NewObject(toEntries(f.items))
}
