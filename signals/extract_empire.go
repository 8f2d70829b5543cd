package signals

import (
	"sort"

	"github.com/neper-stars/clausewitz/resolve"
)

// leaders extracts §5's leaders signal. The ruler is identified primarily
// via country[player].ruler (exact leader id match); class == "official"
// is used only as a fallback when that field is absent, matching the
// rule in §4.9.
func (b *builder) leaders() LeadersSignal {
	section := b.getSection("leaders")
	if len(section) == 0 {
		return LeadersSignal{Leaders: []LeaderSignal{}}
	}

	var actualRulerID *int
	var rulerKnown bool
	if country := b.getEntry("country", idKey(b.playerIDInt())); country != nil {
		if raw, ok := country["ruler"]; ok {
			id := asInt(raw)
			actualRulerID = &id
			rulerKnown = true
		}
	}

	out := LeadersSignal{Leaders: make([]LeaderSignal, 0, len(section))}
	for id, raw := range section {
		leader := asMap(raw)
		if leader == nil {
			continue
		}
		leaderID := atoiOr(id, -1)
		if leaderID < 0 {
			continue
		}

		isRuler := false
		if rulerKnown {
			isRuler = actualRulerID != nil && *actualRulerID == leaderID
		} else {
			isRuler = asString(leader["class"]) == "official"
		}

		entry := LeaderSignal{
			ID:      leaderID,
			Class:   asString(leader["class"]),
			IsRuler: isRuler,
		}
		if lvl, ok := leader["level"]; ok {
			entry.Level = asIntPtr(lvl)
		}
		if nameVal, ok := leader["name"]; ok {
			resolved := resolve.ResolveDefault(valuePtr(fromJSON(nameVal)), resolve.ContextGeneric, "")
			entry.Name = resolved.Display
			entry.NameKey = resolved.RawKey
		}
		entry.DeathDate = asString(leader["death_date"])
		entry.DateAdded = asString(leader["date_added"])
		entry.RecruitmentDate = asString(leader["recruitment_date"])

		if isRuler {
			out.RulerID = &leaderID
			out.RulerName = entry.Name
		}
		out.Leaders = append(out.Leaders, entry)
	}
	out.Count = len(out.Leaders)
	sort.Slice(out.Leaders, func(i, j int) bool { return out.Leaders[i].ID < out.Leaders[j].ID })
	return out
}

// wars extracts §5's wars signal. A war is player-involved iff the
// player's country id appears among its attackers or defenders.
func (b *builder) wars() WarsSignal {
	section := b.getSection("war")
	out := WarsSignal{Wars: []string{}, BattleLocations: map[string][]string{}}
	if len(section) == 0 {
		return out
	}

	player := b.playerIDInt()
	for id, raw := range section {
		war := asMap(raw)
		if war == nil {
			continue
		}
		involved := countryListContains(war["attackers"], player) || countryListContains(war["defenders"], player)
		if involved {
			out.PlayerAtWar = true
		}

		name := "War #" + id
		if nameVal, ok := war["name"]; ok {
			resolved := resolve.Resolve(valuePtr(fromJSON(nameVal)), resolve.ContextGeneric)
			if resolved.Source != resolve.SourceMissing && resolved.Display != "" {
				name = resolved.Display
			}
		}
		out.Wars = append(out.Wars, name)

		if battles := asSlice(war["battles"]); len(battles) > 0 {
			var systems []string
			for _, raw := range battles {
				battle := asMap(raw)
				if battle == nil {
					continue
				}
				if sysName, ok := battleSystemName(b, battle); ok {
					systems = append(systems, sysName)
					if len(systems) == 3 {
						break
					}
				}
			}
			if len(systems) > 0 {
				out.BattleLocations[name] = systems
			}
		}
	}
	out.Count = len(out.Wars)
	sort.Strings(out.Wars)
	return out
}

func battleSystemName(b *builder, battle map[string]any) (string, bool) {
	sysID, ok := battle["system"]
	if !ok {
		return "", false
	}
	entry := b.getEntry("galactic_object", asKeyText(sysID))
	if entry == nil {
		return "", false
	}
	if name, ok := entry["name"]; ok {
		resolved := resolve.Resolve(valuePtr(fromJSON(name)), resolve.ContextGeneric)
		return resolved.Display, true
	}
	return "", false
}

// diplomacy extracts §5's diplomacy signal.
func (b *builder) diplomacy() DiplomacySignal {
	out := DiplomacySignal{
		Allies:         []int{},
		Rivals:         []int{},
		Treaties:       map[string][]int{},
		EmpireNames:    map[string]string{},
		KnownEmpireIDs: []int{},
	}
	out.PlayerID = b.playerID

	country := b.getEntry("country", idKey(b.playerIDInt()))
	if country == nil {
		return out
	}
	relations := asMap(country["relations_manager"])
	if relations == nil {
		return out
	}
	entries := asSlice(relations["relation"])

	treatyKinds := []string{
		"defensive_pact", "non_aggression_pact", "commercial_pact", "migration_treaty",
		"sensor_link", "research_agreement", "embassy", "truce",
	}
	known := map[int]bool{}
	for _, raw := range entries {
		rel := asMap(raw)
		if rel == nil {
			continue
		}
		otherID, ok := rel["country"]
		if !ok {
			continue
		}
		other := asInt(otherID)
		known[other] = true

		if asBool(rel["is_rival"]) {
			out.Rivals = append(out.Rivals, other)
		}
		if asBool(rel["alliance"]) {
			out.Allies = append(out.Allies, other)
		}
		for _, kind := range treatyKinds {
			if asBool(rel[kind]) {
				out.Treaties[kind] = append(out.Treaties[kind], other)
			}
		}
	}
	for id := range known {
		out.KnownEmpireIDs = append(out.KnownEmpireIDs, id)
		if name, ok := b.countryName(id); ok {
			out.EmpireNames[idKey(id)] = name
		}
	}

	sort.Ints(out.Allies)
	sort.Ints(out.Rivals)
	sort.Ints(out.KnownEmpireIDs)
	for kind, ids := range out.Treaties {
		out.Treaties[kind] = dedupSortInts(ids)
	}
	return out
}

// countryName resolves a country's display name, preferring a direct
// name="..." string and falling back to the EMPIRE_DESIGN_* localization
// key, per base.py's _get_country_names_map.
func (b *builder) countryName(id int) (string, bool) {
	country := b.getEntry("country", idKey(id))
	if country == nil {
		return "", false
	}
	nameVal, ok := country["name"]
	if !ok {
		return "", false
	}
	resolved := resolve.Resolve(valuePtr(fromJSON(nameVal)), resolve.ContextCountry)
	return resolved.Display, true
}

// technology extracts §5's technology signal.
func (b *builder) technology() TechnologySignal {
	out := TechnologySignal{PlayerID: b.playerID, Techs: []string{}, InProgress: []TechInProgress{}}
	country := b.getEntry("country", idKey(b.playerIDInt()))
	if country == nil {
		return out
	}
	tech := asMap(country["tech_status"])
	if tech == nil {
		return out
	}
	for _, t := range asSlice(tech["technology"]) {
		if name := asString(t); name != "" {
			out.Techs = append(out.Techs, name)
		}
	}
	sort.Strings(out.Techs)
	out.Count = len(out.Techs)

	for _, category := range []string{"physics", "society", "engineering"} {
		queue := asSlice(tech[category+"_queue"])
		for _, raw := range queue {
			item := asMap(raw)
			if item == nil {
				continue
			}
			out.InProgress = append(out.InProgress, TechInProgress{
				ID:       asString(item["technology"]),
				Category: category,
				Progress: asFloat(item["progress"]),
			})
		}
	}
	return out
}

func atoiOr(s string, def int) int {
	n, err := parseIntLoose(s)
	if err != nil {
		return def
	}
	return n
}
