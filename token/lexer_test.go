package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, src string) []Token {
	t.Helper()
	lex := New([]byte(src))
	var out []Token
	for {
		tok, err := lex.Next()
		require.NoError(t, err)
		out = append(out, tok)
		if tok.Kind == EOF {
			return out
		}
	}
}

func TestLexerBasicAssignment(t *testing.T) {
	toks := collect(t, `name = "Earth" `)
	require.Len(t, toks, 4)
	assert.Equal(t, Identifier, toks[0].Kind)
	assert.Equal(t, "name", toks[0].Text)
	assert.Equal(t, Equals, toks[1].Kind)
	assert.Equal(t, String, toks[2].Kind)
	assert.Equal(t, "Earth", toks[2].Text)
	assert.Equal(t, EOF, toks[3].Kind)
}

func TestLexerBlockAndList(t *testing.T) {
	toks := collect(t, `owned_fleets={ { fleet=7 } { fleet=9 } }`)
	var kinds []Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Contains(t, kinds, LBrace)
	assert.Contains(t, kinds, RBrace)
}

func TestLexerNumberVsDate(t *testing.T) {
	toks := collect(t, `military_power=123.5 date=2200.03.15 neg=-42`)
	var byText = map[string]Token{}
	for _, tok := range toks {
		if tok.Kind != EOF {
			byText[tok.Text] = tok
		}
	}
	require.Equal(t, Number, byText["123.5"].Kind)
	assert.InDelta(t, 123.5, byText["123.5"].Float, 0.0001)
	require.Equal(t, Date, byText["2200.03.15"].Kind)
	require.Equal(t, Integer, byText["-42"].Kind)
	assert.EqualValues(t, -42, byText["-42"].Int)
}

func TestLexerCommentSkipped(t *testing.T) {
	toks := collect(t, "# a comment\nkey=1")
	require.Len(t, toks, 4)
	assert.Equal(t, Identifier, toks[0].Kind)
	assert.Equal(t, "key", toks[0].Text)
}

func TestLexerStringLiteralBackslash(t *testing.T) {
	toks := collect(t, `path="C:\games\save"`)
	require.Len(t, toks, 4)
	assert.Equal(t, String, toks[2].Kind)
	assert.Equal(t, `C:\games\save`, toks[2].Text)
}

func TestLexerUnterminatedString(t *testing.T) {
	lex := New([]byte(`key="unterminated`))
	_, err := lex.Next() // identifier
	require.NoError(t, err)
	_, err = lex.Next() // equals
	require.NoError(t, err)
	_, err = lex.Next() // string -> error
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestLexerNeverInfiniteLoops(t *testing.T) {
	// A grab-bag of inputs, including malformed ones, each must terminate.
	inputs := []string{
		"",
		"   \t\n\r  ",
		"###",
		`"`,
		"{{{{{",
		"}}}}}",
		"= = = =",
		"\x00\x01\x02",
		"key=",
	}
	for _, in := range inputs {
		lex := New([]byte(in))
		for i := 0; i < 10000; i++ {
			tok, err := lex.Next()
			if err != nil || tok.Kind == EOF {
				break
			}
		}
	}
}
