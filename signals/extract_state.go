package signals

import (
	"sort"

	"github.com/neper-stars/clausewitz/resolve"
)

// megastructures extracts §5's megastructures signal, scoped to
// player-owned structures; entries with no owner field are kept as well.
func (b *builder) megastructures() MegastructuresSignal {
	out := MegastructuresSignal{PlayerID: b.playerID, Megastructures: []MegastructureSignal{}, ByType: map[string]int{}}
	section := b.getSection("megastructures")
	player := b.playerIDInt()
	for id, raw := range section {
		m := asMap(raw)
		if m == nil {
			continue
		}
		owner, hasOwner := m["owner"]
		if hasOwner && asInt(owner) != player {
			continue
		}
		entry := MegastructureSignal{
			ID:          atoiOr(id, -1),
			Type:        asString(m["type"]),
			Stage:       asInt(m["stage"]),
			DisplayType: asString(m["display_type"]),
			Status:      asString(m["status"]),
		}
		if planet, ok := m["planet"]; ok {
			entry.PlanetID = asIntPtr(planet)
		}
		out.Megastructures = append(out.Megastructures, entry)
		out.ByType[entry.Type]++
	}
	out.Count = len(out.Megastructures)
	sort.Slice(out.Megastructures, func(i, j int) bool { return out.Megastructures[i].ID < out.Megastructures[j].ID })
	return out
}

// crisis extracts §5's crisis signal.
func (b *builder) crisis() CrisisSignal {
	out := CrisisSignal{CrisisCountries: []CrisisCountry{}, CrisisTypesDetected: []string{}}
	section := b.getSection("country")
	types := map[string]bool{}
	player := b.playerIDInt()
	for id, raw := range section {
		c := asMap(raw)
		if c == nil {
			continue
		}
		crisisType := asString(c["crisis_type"])
		if crisisType == "" {
			continue
		}
		out.Active = true
		types[crisisType] = true
		cid := atoiOr(id, -1)
		out.CrisisCountries = append(out.CrisisCountries, CrisisCountry{CountryID: cid, Type: crisisType})
		if cid == player {
			out.Type = crisisType
			out.PlayerIsCrisisFighter = true
			if kills, ok := c["crisis_kills"]; ok {
				out.PlayerCrisisKills = asInt(kills)
			}
		}
	}
	for t := range types {
		out.CrisisTypesDetected = append(out.CrisisTypesDetected, t)
	}
	sort.Strings(out.CrisisTypesDetected)
	sort.Slice(out.CrisisCountries, func(i, j int) bool {
		return out.CrisisCountries[i].CountryID < out.CrisisCountries[j].CountryID
	})
	return out
}

// fallenEmpires extracts §5's fallen_empires signal.
func (b *builder) fallenEmpires() FallenEmpiresSignal {
	out := FallenEmpiresSignal{FallenEmpires: []FallenEmpireSignal{}}
	section := b.getSection("country")
	for id, raw := range section {
		c := asMap(raw)
		if c == nil {
			continue
		}
		govt := asString(c["government"])
		isFallen := asBool(c["is_fallen_empire"]) || govt == "fe_military" || govt == "fe_spiritual" || govt == "fe_material"
		isAwakened := asBool(c["is_awakened"])
		if !isFallen && !isAwakened {
			continue
		}

		var name string
		if nameVal, ok := c["name"]; ok {
			name = resolve.Resolve(valuePtr(fromJSON(nameVal)), resolve.ContextCountry).Display
		}
		status := "dormant"
		if isAwakened {
			status = "awakened"
			out.AwakenedCount++
		} else {
			out.DormantCount++
		}
		cid := atoiOr(id, -1)

		var ethics []string
		for _, e := range asSlice(c["ethic"]) {
			if s := asString(e); s != "" {
				ethics = append(ethics, s)
			}
		}

		out.FallenEmpires = append(out.FallenEmpires, FallenEmpireSignal{
			Name:          name,
			Status:        status,
			Archetype:     govt,
			MilitaryPower: asFloat(c["military_power"]),
			Ethics:        ethics,
			CountryID:     &cid,
		})
		if asBool(c["war_in_heaven"]) {
			out.WarInHeaven = true
		}
	}
	sort.Slice(out.FallenEmpires, func(i, j int) bool { return out.FallenEmpires[i].Name < out.FallenEmpires[j].Name })
	return out
}

// policies extracts §5's policies signal.
func (b *builder) policies() PoliciesSignal {
	out := PoliciesSignal{PlayerID: b.playerID, Policies: map[string]string{}}
	country := b.getEntry("country", idKey(b.playerIDInt()))
	if country == nil {
		return out
	}
	for key, raw := range asMap(country["policy_flags"]) {
		out.Policies[key] = asString(raw)
	}
	out.Count = len(out.Policies)
	return out
}

// edicts extracts §5's edicts signal.
func (b *builder) edicts() EdictsSignal {
	out := EdictsSignal{PlayerID: b.playerID, Edicts: []string{}}
	country := b.getEntry("country", idKey(b.playerIDInt()))
	if country == nil {
		return out
	}
	var names []string
	for _, raw := range asSlice(country["active_edicts"]) {
		entry := asMap(raw)
		if entry == nil {
			continue
		}
		if name := asString(entry["edict"]); name != "" {
			names = append(names, name)
		}
	}
	out.Edicts = dedupSortStrings(names)
	out.Count = len(out.Edicts)
	return out
}

// galaxySettings extracts §5's galaxy_settings signal.
func (b *builder) galaxySettings() GalaxySettingsSignal {
	var out GalaxySettingsSignal
	meta := b.getSection("meta")
	if meta == nil {
		return out
	}
	out.GalaxyName = asStringPtr(meta["galaxy_name"])
	out.Ironman = asStringPtr(meta["ironman"])
	out.Difficulty = asStringPtr(meta["difficulty"])
	out.CrisisType = asStringPtr(meta["crisis_type"])
	if v, ok := meta["mid_game_start"]; ok {
		out.MidGameStart = asIntPtr(v)
	}
	if v, ok := meta["end_game_start"]; ok {
		out.EndGameStart = asIntPtr(v)
	}
	if v, ok := meta["victory_year"]; ok {
		out.VictoryYear = asIntPtr(v)
	}
	return out
}
