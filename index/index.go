// Package index builds the Section Index: O(1) lookups for top-level
// section names and, within each enumerated section, entry key to
// subtree. Both tables are built once, immediately after parsing, and are
// immutable for the lifetime of the session.
package index

import "github.com/neper-stars/clausewitz/tree"

// Sections enumerates the closed set of top-level sections the query
// engine has special knowledge of. Build uses it only to size the section
// table: every top-level section, in this set or not, is indexed by name,
// and entries inside any section are found through the section object's
// own key index.
var Sections = []string{
	"meta", "galaxy", "country", "player", "pop_groups", "planets",
	"fleet", "ships", "ship_design", "war", "leaders", "species_db",
	"starbase_mgr", "galactic_object", "megastructures",
	"archaeological_sites", "buildings", "pop_factions",
}

// Index is the built Section Index over a parsed document.
type Index struct {
	doc *tree.Object
	// bySection maps a section name to its top-level value, if present.
	bySection map[string]tree.Value
}

// Build constructs the Section Index from a freshly parsed document. It is
// called exactly once per session, after C1→C2→C3 complete.
func Build(doc *tree.Object) *Index {
	idx := &Index{doc: doc, bySection: make(map[string]tree.Value, len(Sections)+8)}
	for _, key := range doc.Keys() {
		v, _ := doc.Get(key)
		idx.bySection[key] = v
	}
	return idx
}

// Section returns the top-level value for name, if present. Lookup is
// O(1): the table was built once over the document's own entry index.
func (idx *Index) Section(name string) (tree.Value, bool) {
	v, ok := idx.bySection[name]
	return v, ok
}

// Entry returns the subtree for key inside section, if both the section
// and the key exist and the section's value is an object. Lookup is O(1)
// via the section object's own key index.
func (idx *Index) Entry(section, key string) (tree.Value, bool) {
	s, ok := idx.bySection[section]
	if !ok || s.Kind != tree.KindObject {
		return tree.Value{}, false
	}
	return s.Object.Get(key)
}

// SectionNames returns every top-level section name present in the
// document, known or unknown to the closed enumeration.
func (idx *Index) SectionNames() []string {
	return idx.doc.Keys()
}

// Document returns the full parsed document the index was built over.
func (idx *Index) Document() *tree.Object {
	return idx.doc
}
