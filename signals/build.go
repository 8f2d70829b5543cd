package signals

import (
	"fmt"
	"time"

	"github.com/neper-stars/clausewitz/bridge"
)

// session is the narrow slice of *bridge.Session the builder needs,
// kept as an interface so tests can substitute a fake without spawning
// a real subprocess.
type session interface {
	Call(req any, timeout ...time.Duration) (map[string]any, error)
}

// builder carries per-snapshot shared state (the player id and the
// session) across the sub-extractors.
type builder struct {
	s        session
	playerID *int
}

// Build drives s through a fixed battery of queries and assembles the
// SnapshotSignals document. now is injected so callers control
// GeneratedAt instead of this package reaching for the wall clock
// itself.
func Build(s *bridge.Session, now time.Time) (*SnapshotSignals, error) {
	return build(s, now)
}

func build(s session, now time.Time) (*SnapshotSignals, error) {
	b := &builder{s: s}
	b.playerID = b.resolvePlayerID()

	snap := &SnapshotSignals{
		FormatVersion: FormatVersion,
		GeneratedAt:   now.UTC(),
		PlayerID:      b.playerID,
	}
	snap.Leaders = b.leaders()
	snap.Wars = b.wars()
	snap.Diplomacy = b.diplomacy()
	snap.Technology = b.technology()
	snap.Megastructures = b.megastructures()
	snap.Crisis = b.crisis()
	snap.FallenEmpires = b.fallenEmpires()
	snap.Policies = b.policies()
	snap.Edicts = b.edicts()
	snap.GalaxySettings = b.galaxySettings()
	snap.Systems = b.systems()
	snap.AscensionPerks = b.ascensionPerks()
	snap.LGate = b.lgate()
	snap.Menace = b.menace()
	snap.GreatKhan = b.greatKhan()
	snap.GalacticCommunity = b.galacticCommunity()
	snap.Traditions = b.traditions()
	snap.Precursors = b.precursors()
	snap.Subjects = b.subjects()
	snap.Geography = b.geography()
	return snap, nil
}

// resolvePlayerID reads player.country, defaulting to 0 per the
// builder's identification rule. player is a flat block (country is a
// direct field, not an id-keyed sub-entry), so this reads the whole
// section the same way galaxySettings and the other flat-section
// extractors do.
func (b *builder) resolvePlayerID() *int {
	section := b.getSection("player")
	if v, ok := section["country"]; ok {
		id := asInt(v)
		return &id
	}
	zero := 0
	return &zero
}

func (b *builder) playerIDInt() int {
	if b.playerID == nil {
		return 0
	}
	return *b.playerID
}

// getEntry fetches section[key] and returns it as a map, or nil if
// absent or not object-shaped.
func (b *builder) getEntry(section, key string) map[string]any {
	resp, err := b.s.Call(map[string]any{"op": "get_entry", "section": section, "key": key})
	if err != nil {
		return nil
	}
	if ok, _ := resp["found"].(bool); !ok {
		return nil
	}
	return asMap(resp["entry"])
}

// getSection fetches an entire section as a map of entry id -> entry.
func (b *builder) getSection(name string) map[string]any {
	resp, err := b.s.Call(map[string]any{"op": "extract_sections", "sections": []string{name}})
	if err != nil {
		return nil
	}
	sections := asMap(resp["sections"])
	return asMap(sections[name])
}

// countKeys tallies occurrences of the named keys across the whole
// document.
func (b *builder) countKeys(keys ...string) map[string]int {
	resp, err := b.s.Call(map[string]any{"op": "count_keys", "keys": keys})
	if err != nil {
		return map[string]int{}
	}
	counts := asMap(resp["counts"])
	out := make(map[string]int, len(counts))
	for k, v := range counts {
		out[k] = asInt(v)
	}
	return out
}

// countrySummaries fetches the full country section with no field
// projection, with sentinel "none" entries already skipped server-side.
func (b *builder) countrySummaries() []map[string]any {
	resp, err := b.s.Call(map[string]any{"op": "get_country_summaries"})
	if err != nil {
		return nil
	}
	rows := asSlice(resp["countries"])
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, asMap(row))
	}
	return out
}

func idKey(id int) string {
	return fmt.Sprintf("%d", id)
}
