package signals

import "sort"

// systems extracts §5's systems signal: count of player-owned systems,
// grouped by starbase level.
func (b *builder) systems() SystemsSignal {
	out := SystemsSignal{PlayerID: b.playerID, ByLevel: map[string]int{}}
	starbases := b.getSection("starbase_mgr")
	player := b.playerIDInt()
	for _, raw := range starbases {
		sb := asMap(raw)
		if sb == nil {
			continue
		}
		if owner, ok := sb["owner"]; !ok || asInt(owner) != player {
			continue
		}
		out.Count++
		level := asString(sb["level"])
		if level == "" {
			level = "unknown"
		}
		out.ByLevel[level]++
	}
	return out
}

// ascensionPerks extracts §5's ascension_perks signal.
func (b *builder) ascensionPerks() AscensionPerksSignal {
	out := AscensionPerksSignal{Perks: []string{}}
	country := b.getEntry("country", idKey(b.playerIDInt()))
	if country == nil {
		return out
	}
	for _, raw := range asSlice(country["ascension_perks"]) {
		if perk := asString(raw); perk != "" {
			out.Perks = append(out.Perks, perk)
		}
	}
	sort.Strings(out.Perks)
	out.Count = len(out.Perks)
	return out
}

// lgate extracts §5's lgate signal. InsightsRequired defaults to 7 per
// the vanilla L-Gate clue-insight requirement.
func (b *builder) lgate() LGateSignal {
	out := LGateSignal{InsightsRequired: 7}
	galaxy := b.getSection("galaxy")
	if galaxy == nil {
		return out
	}
	lgate := asMap(galaxy["lgate"])
	if lgate == nil {
		return out
	}
	out.Enabled = asBool(lgate["enabled"])
	out.Opened = asBool(lgate["opened"])
	out.InsightsCollected = asInt(lgate["insights_collected"])
	if req, ok := lgate["insights_required"]; ok {
		out.InsightsRequired = asInt(req)
	}
	return out
}

// menace extracts §5's menace signal.
func (b *builder) menace() MenaceSignal {
	var out MenaceSignal
	country := b.getEntry("country", idKey(b.playerIDInt()))
	if country == nil {
		return out
	}
	out.MenaceLevel = asInt(country["menace"])
	out.CrisisLevel = asInt(country["crisis_level"])
	for _, raw := range asSlice(country["ascension_perks"]) {
		if asString(raw) == "ap_become_the_crisis" {
			out.HasCrisisPerk = true
		}
	}
	return out
}

// greatKhan extracts §5's great_khan signal.
func (b *builder) greatKhan() GreatKhanSignal {
	var out GreatKhanSignal
	section := b.getSection("country")
	for id, raw := range section {
		c := asMap(raw)
		if c == nil {
			continue
		}
		if asString(c["government"]) != "marauder_empire" && !asBool(c["is_marauder"]) {
			continue
		}
		out.MaraudersPresent = true
		out.MarauderCount++
		if asBool(c["is_khan"]) || asString(c["khan_status"]) != "" {
			out.KhanRisen = true
			cid := atoiOr(id, -1)
			out.KhanCountryID = &cid
			out.KhanStatus = asStringPtr(c["khan_status"])
		}
	}
	return out
}

// galacticCommunity extracts §5's galactic_community signal.
func (b *builder) galacticCommunity() GalacticCommunitySignal {
	var out GalacticCommunitySignal
	galaxy := b.getSection("galaxy")
	if galaxy == nil {
		return out
	}
	gc := asMap(galaxy["galactic_community"])
	if gc == nil {
		return out
	}
	out.Exists = true
	player := b.playerIDInt()
	for _, raw := range asSlice(gc["members"]) {
		if asInt(raw) == player {
			out.Member = true
		}
	}
	for _, raw := range asSlice(gc["council"]) {
		if asInt(raw) == player {
			out.CouncilMember = true
		}
	}
	out.MembersCount = len(asSlice(gc["members"]))
	return out
}

// traditions extracts §5's traditions signal.
func (b *builder) traditions() TraditionsSignal {
	out := TraditionsSignal{FinishedTrees: []string{}, ByTree: map[string]TraditionTreeSignal{}}
	country := b.getEntry("country", idKey(b.playerIDInt()))
	if country == nil {
		return out
	}
	finished := map[string]bool{}
	for _, raw := range asSlice(country["tradition_finished"]) {
		if tree := asString(raw); tree != "" {
			finished[tree] = true
		}
	}
	out.TotalTraditions = len(asSlice(country["traditions"]))
	for tree := range finished {
		out.FinishedTrees = append(out.FinishedTrees, tree)
		out.ByTree[tree] = TraditionTreeSignal{Finished: true}
	}
	sort.Strings(out.FinishedTrees)
	return out
}

// precursors extracts §5's precursors signal.
func (b *builder) precursors() PrecursorsSignal {
	out := PrecursorsSignal{DiscoveredHomeworlds: []string{}, PrecursorProgress: map[string]PrecursorProgressSignal{}}
	galaxy := b.getSection("galaxy")
	if galaxy == nil {
		return out
	}
	for name, raw := range asMap(galaxy["precursor_progress"]) {
		p := asMap(raw)
		if p == nil {
			continue
		}
		found := asBool(p["homeworld_found"])
		out.PrecursorProgress[name] = PrecursorProgressSignal{
			Name:           asString(p["name"]),
			Stage:          asString(p["stage"]),
			HomeworldFound: found,
		}
		if found {
			out.DiscoveredHomeworlds = append(out.DiscoveredHomeworlds, name)
		}
	}
	sort.Strings(out.DiscoveredHomeworlds)
	return out
}

// subjects extracts §5's subjects signal: as_overlord lists countries
// the player holds as subjects; as_subject lists the (at most one)
// overlord the player itself answers to.
func (b *builder) subjects() SubjectsSignal {
	out := SubjectsSignal{
		AsOverlord:     []int{},
		AsSubject:      []int{},
		SubjectDetails: map[string]SubjectDetailSignal{},
		EmpireNames:    map[string]string{},
	}
	player := b.playerIDInt()

	for _, row := range b.countrySummaries() {
		cidRaw, ok := row["id"]
		if !ok {
			continue
		}
		cid := atoiOr(asString(cidRaw), -1)
		if cid < 0 || cid == player {
			continue
		}
		overlord, hasOverlord := row["overlord"]
		if !hasOverlord {
			continue
		}
		if asInt(overlord) != player {
			continue
		}
		out.AsOverlord = append(out.AsOverlord, cid)
		if name, ok := b.countryName(cid); ok {
			out.EmpireNames[idKey(cid)] = name
		}
		if agreement := asMap(row["subject_of"]); agreement != nil {
			out.SubjectDetails[idKey(cid)] = SubjectDetailSignal{
				Preset:         asString(agreement["preset"]),
				Specialization: asString(agreement["specialization"]),
			}
		}
	}

	if country := b.getEntry("country", idKey(player)); country != nil {
		if overlord, ok := country["overlord"]; ok {
			overlordID := asInt(overlord)
			out.AsSubject = append(out.AsSubject, overlordID)
			if name, ok := b.countryName(overlordID); ok {
				out.EmpireNames[idKey(overlordID)] = name
			}
		}
	}

	sort.Ints(out.AsOverlord)
	sort.Ints(out.AsSubject)
	return out
}
