package signals

import (
	"math"
	"sort"

	"github.com/neper-stars/clausewitz/resolve"
)

const nullRefSentinel = 4294967295

type point struct {
	x, y float64
	ok   bool
}

// geography computes §5's geography signal: an ownership map over
// galactic_object systems traced through the starbase->ship->fleet->
// owned_fleets chain, then border neighbors, chokepoints, and the
// player's empire centroid from that map plus hyperlane adjacency.
// Grounded directly on geography.py's get_strategic_geography.
func (b *builder) geography() GeographySignal {
	out := GeographySignal{BorderNeighbors: []BorderNeighborSignal{}, Chokepoints: []ChokepointSignal{}}

	systems := b.getSection("galactic_object")
	if len(systems) == 0 {
		return out
	}

	ownerMap := b.systemOwnerMap()
	player := b.playerIDInt()

	coords := map[string]point{}
	adjacency := map[string][]string{}
	var playerSystems []string

	for sysID, raw := range systems {
		sys := asMap(raw)
		if sys == nil {
			continue
		}
		if coord := asMap(sys["coordinate"]); coord != nil {
			if x, okX := coord["x"]; okX {
				if y, okY := coord["y"]; okY {
					coords[sysID] = point{x: asFloat(x), y: asFloat(y), ok: true}
				}
			}
		}
		if ownerMap[sysID] == player {
			playerSystems = append(playerSystems, sysID)
		}
		adjacency[sysID] = hyperlaneTargets(sys["hyperlane"])
	}
	out.TotalPlayerSystems = len(playerSystems)
	if len(playerSystems) == 0 {
		return out
	}

	centroid, hasCentroid := computeCentroid(playerSystems, coords)
	if hasCentroid {
		out.EmpireCentroid = &Centroid{X: round1(centroid.x), Y: round1(centroid.y)}
	}

	borderCounts := map[int]int{}
	for _, sysID := range playerSystems {
		for _, neighbor := range adjacency[sysID] {
			owner, ok := ownerMap[neighbor]
			if ok && owner != player {
				borderCounts[owner]++
			}
		}
	}

	for empireID, count := range borderCounts {
		name, _ := b.countryName(empireID)
		if name == "" {
			name = "Empire #" + idKey(empireID)
		}
		direction := ""
		if hasCentroid {
			direction = computeDirection(empireID, ownerMap, coords, centroid)
		}
		out.BorderNeighbors = append(out.BorderNeighbors, BorderNeighborSignal{
			EmpireName:          name,
			EmpireID:            empireID,
			Direction:           direction,
			SharedBorderSystems: count,
		})
	}
	sort.Slice(out.BorderNeighbors, func(i, j int) bool {
		return out.BorderNeighbors[i].SharedBorderSystems > out.BorderNeighbors[j].SharedBorderSystems
	})
	if len(out.BorderNeighbors) > 15 {
		out.BorderNeighbors = out.BorderNeighbors[:15]
	}

	playerSet := make(map[string]bool, len(playerSystems))
	for _, s := range playerSystems {
		playerSet[s] = true
	}

	enemyEntryPoints := map[int]map[string]bool{}
	for _, sysID := range playerSystems {
		for _, neighbor := range adjacency[sysID] {
			owner, ok := ownerMap[neighbor]
			if !ok || owner == player {
				continue
			}
			if enemyEntryPoints[owner] == nil {
				enemyEntryPoints[owner] = map[string]bool{}
			}
			enemyEntryPoints[owner][sysID] = true
		}
	}

	chokepointEnemies := map[string][]string{}
	for empireID, entrySystems := range enemyEntryPoints {
		if len(entrySystems) > 2 {
			continue
		}
		name, _ := b.countryName(empireID)
		if name == "" {
			name = "Empire #" + idKey(empireID)
		}
		for sysID := range entrySystems {
			chokepointEnemies[sysID] = append(chokepointEnemies[sysID], name)
		}
	}

	for sysID, enemies := range chokepointEnemies {
		name := b.systemName(sysID)
		if name == "" {
			name = "System #" + sysID
		}
		friendly := 0
		for _, n := range adjacency[sysID] {
			if playerSet[n] {
				friendly++
			}
		}
		sort.Strings(enemies)
		out.Chokepoints = append(out.Chokepoints, ChokepointSignal{
			SystemName:          name,
			SystemID:            atoiOr(sysID, -1),
			FriendlyConnections: friendly,
			EnemyNeighbors:      enemies,
		})
	}
	sort.Slice(out.Chokepoints, func(i, j int) bool {
		return out.Chokepoints[i].FriendlyConnections < out.Chokepoints[j].FriendlyConnections
	})
	if len(out.Chokepoints) > 10 {
		out.Chokepoints = out.Chokepoints[:10]
	}

	return out
}

// systemOwnerMap traces system -> starbase -> station ship -> fleet ->
// owning country across the whole galaxy in four section fetches,
// mirroring geography.py's _build_system_owner_map.
func (b *builder) systemOwnerMap() map[string]int {
	out := map[string]int{}

	fleetToCountry := map[string]int{}
	for _, row := range b.countrySummaries() {
		cid := atoiOr(asString(row["id"]), -1)
		fm := asMap(row["fleets_manager"])
		if fm == nil {
			continue
		}
		for _, raw := range asSlice(fm["owned_fleets"]) {
			entry := asMap(raw)
			if entry == nil {
				continue
			}
			if fid, ok := entry["fleet"]; ok {
				fleetToCountry[asKeyText(fid)] = cid
			}
		}
	}

	starbaseStation := map[string]string{}
	for sbID, raw := range b.getSection("starbase_mgr") {
		sb := asMap(raw)
		if sb == nil {
			continue
		}
		if station, ok := sb["station"]; ok {
			starbaseStation[sbID] = asKeyText(station)
		}
	}

	shipFleet := map[string]string{}
	for shipID, raw := range b.getSection("ships") {
		ship := asMap(raw)
		if ship == nil {
			continue
		}
		if fleet, ok := ship["fleet"]; ok {
			shipFleet[shipID] = asKeyText(fleet)
		}
	}

	for sysID, raw := range b.getSection("galactic_object") {
		sys := asMap(raw)
		if sys == nil {
			continue
		}
		for _, sbID := range systemStarbaseIDs(sys["starbases"]) {
			shipID, ok := starbaseStation[sbID]
			if !ok {
				continue
			}
			fleetID, ok := shipFleet[shipID]
			if !ok {
				continue
			}
			if cid, ok := fleetToCountry[fleetID]; ok {
				out[sysID] = cid
				break
			}
		}
	}
	return out
}

func systemStarbaseIDs(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, asKeyText(item))
		}
		return out
	case string, float64:
		if asKeyText(val) == idKey(nullRefSentinel) {
			return nil
		}
		return []string{asKeyText(val)}
	default:
		return nil
	}
}

func hyperlaneTargets(v any) []string {
	var out []string
	for _, raw := range asSlice(v) {
		lane := asMap(raw)
		if lane == nil {
			continue
		}
		target, ok := lane["to"]
		if !ok {
			continue
		}
		text := asKeyText(target)
		if text == "" || text == idKey(nullRefSentinel) {
			continue
		}
		out = append(out, text)
	}
	return out
}

func (b *builder) systemName(sysID string) string {
	entry := b.getEntry("galactic_object", sysID)
	if entry == nil {
		return ""
	}
	nameVal, ok := entry["name"]
	if !ok {
		return ""
	}
	return resolve.Resolve(valuePtr(fromJSON(nameVal)), resolve.ContextGeneric).Display
}

func computeCentroid(systemIDs []string, coords map[string]point) (point, bool) {
	var sumX, sumY float64
	var n int
	for _, id := range systemIDs {
		if p, ok := coords[id]; ok && p.ok {
			sumX += p.x
			sumY += p.y
			n++
		}
	}
	if n == 0 {
		return point{}, false
	}
	return point{x: sumX / float64(n), y: sumY / float64(n)}, true
}

// computeDirection reports the 8-point compass direction from the
// player centroid to empireID's own system centroid. Stellaris's galaxy
// map uses +x = west, +y = south; negating both axes converts to
// standard compass orientation before computing the angle.
func computeDirection(empireID int, ownerMap map[string]int, coords map[string]point, from point) string {
	var empireSystems []string
	for sysID, owner := range ownerMap {
		if owner == empireID {
			empireSystems = append(empireSystems, sysID)
		}
	}
	centroid, ok := computeCentroid(empireSystems, coords)
	if !ok {
		return ""
	}
	return angleToCompass(centroid.x-from.x, centroid.y-from.y)
}

var compassDirections = []string{
	"east", "northeast", "north", "northwest",
	"west", "southwest", "south", "southeast",
}

func angleToCompass(dx, dy float64) string {
	angle := math.Atan2(-dy, -dx)
	degrees := math.Mod(angle*180/math.Pi+360, 360)
	index := int((degrees+22.5)/45) % 8
	return compassDirections[index]
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
