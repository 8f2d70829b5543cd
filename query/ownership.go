package query

import "github.com/neper-stars/clausewitz/tree"

// OwnedFleetIDs returns the fleet IDs listed under country[countryID]'s
// fleets_manager.owned_fleets, in source order.
func (e *Engine) OwnedFleetIDs(countryID string) []string {
	countries := e.sectionObject("country")
	if countries == nil {
		return nil
	}
	country, ok := countries.Get(countryID)
	if !ok || country.Kind != tree.KindObject {
		return nil
	}
	mgr, ok := country.Object.Get("fleets_manager")
	if !ok || mgr.Kind != tree.KindObject {
		return nil
	}
	owned, ok := mgr.Object.Get("owned_fleets")
	if !ok {
		return nil
	}
	var out []string
	for _, item := range listOf(owned) {
		if item.Kind != tree.KindObject {
			continue
		}
		if fid, ok := item.Object.Get("fleet"); ok {
			out = append(out, fid.AsKeyText())
		}
	}
	return out
}

// listOf normalizes a value that may be a single object or a list of
// objects (Clausewitz's single-element list collapses to a bare block)
// into a uniform slice.
func listOf(v tree.Value) []tree.Value {
	switch v.Kind {
	case tree.KindList:
		return v.List
	case tree.KindObject:
		return []tree.Value{v}
	default:
		return nil
	}
}

// ShipFleetID returns the fleet ID that ships[shipID] belongs to, if any.
func (e *Engine) ShipFleetID(shipID string) (string, bool) {
	ships := e.sectionObject("ships")
	if ships == nil {
		return "", false
	}
	ship, ok := ships.Get(shipID)
	if !ok || ship.Kind != tree.KindObject {
		return "", false
	}
	fleet, ok := ship.Object.Get("fleet")
	if !ok {
		return "", false
	}
	return fleet.AsKeyText(), true
}

// StarbaseStationShipID returns the ship ID stationed at
// starbase_mgr[starbaseID], if any.
func (e *Engine) StarbaseStationShipID(starbaseID string) (string, bool) {
	starbases := e.sectionObject("starbase_mgr")
	if starbases == nil {
		return "", false
	}
	sb, ok := starbases.Get(starbaseID)
	if !ok || sb.Kind != tree.KindObject {
		return "", false
	}
	station, ok := sb.Object.Get("station")
	if !ok {
		return "", false
	}
	return station.AsKeyText(), true
}

// SystemStarbaseIDs returns the starbase IDs anchored in
// galactic_object[systemID].starbases.
func (e *Engine) SystemStarbaseIDs(systemID string) []string {
	systems := e.sectionObject("galactic_object")
	if systems == nil {
		return nil
	}
	sys, ok := systems.Get(systemID)
	if !ok || sys.Kind != tree.KindObject {
		return nil
	}
	starbases, ok := sys.Object.Get("starbases")
	if !ok {
		return nil
	}
	var out []string
	for _, item := range listOf(starbases) {
		out = append(out, item.AsKeyText())
	}
	return out
}

// SystemOwnerID resolves the owning country of a system by walking
// system -> starbase -> station ship -> fleet -> fleet's owner, per the
// ownership chain described by the original extractor's fleet-to-country
// bookkeeping. It returns the first owner found among the system's
// starbases, or false if the system has none or none resolve to an owner.
func (e *Engine) SystemOwnerID(systemID string) (string, bool) {
	fleetOwner := e.fleetOwnerIndex()
	for _, starbaseID := range e.SystemStarbaseIDs(systemID) {
		shipID, ok := e.StarbaseStationShipID(starbaseID)
		if !ok {
			continue
		}
		fleetID, ok := e.ShipFleetID(shipID)
		if !ok {
			continue
		}
		if ownerID, ok := fleetOwner[fleetID]; ok {
			return ownerID, true
		}
	}
	return "", false
}

// fleetOwnerIndex builds a fleet ID -> owning country ID map by scanning
// every country's owned_fleets list once. Built fresh per call rather
// than cached on Engine, matching the engine's stateless-between-calls
// design.
func (e *Engine) fleetOwnerIndex() map[string]string {
	out := map[string]string{}
	countries := e.sectionObject("country")
	if countries == nil {
		return out
	}
	for _, countryID := range countries.Keys() {
		for _, fleetID := range e.OwnedFleetIDs(countryID) {
			out[fleetID] = countryID
		}
	}
	return out
}
