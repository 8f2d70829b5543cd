package index_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neper-stars/clausewitz/index"
	"github.com/neper-stars/clausewitz/tree"
)

func TestBuildIndexesSectionsAndEntries(t *testing.T) {
	doc, err := tree.Build([]byte(`
country={ 1={ name="Humanity" } }
unknown_section={ foo=1 }
`))
	require.NoError(t, err)

	idx := index.Build(doc)

	_, ok := idx.Section("country")
	assert.True(t, ok)

	entry, ok := idx.Entry("country", "1")
	require.True(t, ok)
	assert.Equal(t, tree.KindObject, entry.Kind)

	_, ok = idx.Entry("country", "missing")
	assert.False(t, ok)

	_, ok = idx.Entry("nonexistent_section", "1")
	assert.False(t, ok)

	assert.Contains(t, idx.SectionNames(), "unknown_section")
	assert.Same(t, doc, idx.Document())
}
