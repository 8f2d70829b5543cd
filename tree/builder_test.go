package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSimpleAssignment(t *testing.T) {
	doc, err := Build([]byte(`name="Earth" count=3`))
	require.NoError(t, err)
	v, ok := doc.Get("name")
	require.True(t, ok)
	assert.Equal(t, "Earth", v.Text)
	v, ok = doc.Get("count")
	require.True(t, ok)
	assert.EqualValues(t, 3, v.Int)
}

func TestBuildNestedObject(t *testing.T) {
	doc, err := Build([]byte(`country={ 0={ name="Humans" } }`))
	require.NoError(t, err)
	country, ok := doc.Get("country")
	require.True(t, ok)
	require.Equal(t, KindObject, country.Kind)
	zero, ok := country.Object.Get("0")
	require.True(t, ok)
	require.Equal(t, KindObject, zero.Kind)
	name, ok := zero.Object.Get("name")
	require.True(t, ok)
	assert.Equal(t, "Humans", name.Text)
}

func TestBuildListAmbiguityResolvedAtClose(t *testing.T) {
	doc, err := Build([]byte(`tags={ "a" "b" "c" }`))
	require.NoError(t, err)
	tags, ok := doc.Get("tags")
	require.True(t, ok)
	require.Equal(t, KindList, tags.Kind)
	require.Len(t, tags.List, 3)
	assert.Equal(t, "a", tags.List[0].Text)
}

func TestBuildDuplicateKeysPreserved(t *testing.T) {
	doc, err := Build([]byte(`leaders={ 1={ traits="trait_resilient" traits="trait_resilient" traits="trait_carefree" } }`))
	require.NoError(t, err)
	leaders, _ := doc.Get("leaders")
	one, _ := leaders.Object.Get("1")
	all := one.Object.All("traits")
	require.Len(t, all, 3)
	assert.Equal(t, "trait_resilient", all[0].Text)
	assert.Equal(t, "trait_resilient", all[1].Text)
	assert.Equal(t, "trait_carefree", all[2].Text)
	// Simple lookup returns the last occurrence.
	last, ok := one.Object.Get("traits")
	require.True(t, ok)
	assert.Equal(t, "trait_carefree", last.Text)
}

func TestBuildMixedContentGetsImplicitKeys(t *testing.T) {
	// A block with both assignments and bare scalars.
	doc, err := Build([]byte(`thing={ foo=1 "bar" }`))
	require.NoError(t, err)
	thing, ok := doc.Get("thing")
	require.True(t, ok)
	require.Equal(t, KindObject, thing.Kind)
	foo, ok := thing.Object.Get("foo")
	require.True(t, ok)
	assert.EqualValues(t, 1, foo.Int)
	bare, ok := thing.Object.Get("0")
	require.True(t, ok)
	assert.Equal(t, "bar", bare.Text)
}

func TestBuildUnterminatedBlockIsParseError(t *testing.T) {
	_, err := Build([]byte(`country={ 0={ name="Humans" }`))
	require.Error(t, err)
}

func TestBuildUnexpectedCloseBraceIsParseError(t *testing.T) {
	_, err := Build([]byte(`}`))
	require.Error(t, err)
}

func TestBuildSentinelValues(t *testing.T) {
	doc, err := Build([]byte(`ref=4294967295 gone=none flag=yes`))
	require.NoError(t, err)
	ref, _ := doc.Get("ref")
	assert.True(t, ref.IsNullRef())
	gone, _ := doc.Get("gone")
	assert.True(t, gone.IsNone())
	flag, _ := doc.Get("flag")
	b, ok := flag.Bool()
	require.True(t, ok)
	assert.True(t, b)
}

func TestBuildGetEntryTextSpan(t *testing.T) {
	src := []byte(`fleet={ 7={ military_power=5000 } }`)
	doc, err := Build(src)
	require.NoError(t, err)
	fleet, _ := doc.Get("fleet")
	seven, _ := fleet.Object.Get("7")
	raw := string(src[seven.Start:seven.End])
	assert.Equal(t, `{ military_power=5000 }`, raw)
}

func TestBuildDeepNestingDoesNotOverflow(t *testing.T) {
	depth := 3000
	src := make([]byte, 0, depth*2+16)
	src = append(src, []byte("root=")...)
	for i := 0; i < depth; i++ {
		src = append(src, '{')
	}
	for i := 0; i < depth; i++ {
		src = append(src, '}')
	}
	_, err := Build(src)
	require.NoError(t, err)
}
