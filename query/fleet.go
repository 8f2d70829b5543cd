package query

import "github.com/neper-stars/clausewitz/tree"

// FleetCategory is the classification of a fleet entry per §4.5's
// categorization rule.
type FleetCategory string

const (
	FleetStation  FleetCategory = "station"
	FleetCivilian FleetCategory = "civilian"
	FleetMilitary FleetCategory = "military"
)

// CategorizeFleet classifies a fleet entry: station if it carries
// station=yes; civilian if it carries civilian=yes, or if its
// military_power is at most 100; otherwise military.
func CategorizeFleet(fleet *tree.Object) FleetCategory {
	if fleet == nil {
		return FleetCivilian
	}
	if v, ok := fleet.Get("station"); ok {
		if b, bok := v.Bool(); bok && b {
			return FleetStation
		}
	}
	if v, ok := fleet.Get("civilian"); ok {
		if b, bok := v.Bool(); bok && b {
			return FleetCivilian
		}
	}
	if militaryPower(fleet) > 100 {
		return FleetMilitary
	}
	return FleetCivilian
}

func militaryPower(fleet *tree.Object) float64 {
	v, ok := fleet.Get("military_power")
	if !ok {
		return 0
	}
	switch v.Kind {
	case tree.KindNumber:
		return v.Float
	case tree.KindInteger:
		return float64(v.Int)
	default:
		return 0
	}
}

// MilitaryPower returns the fleet's military_power scalar, or 0 if
// absent.
func MilitaryPower(fleet *tree.Object) float64 {
	return militaryPower(fleet)
}
