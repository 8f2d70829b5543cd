package signals

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSession is a scripted session double keyed by a simplified request
// signature, enough to drive the extractors' Call usage without a real
// subprocess.
type fakeSession struct {
	responses map[string]map[string]any
}

func (f *fakeSession) Call(req any, _ ...time.Duration) (map[string]any, error) {
	m, _ := req.(map[string]any)
	op, _ := m["op"].(string)

	switch op {
	case "get_entry":
		key := m["section"].(string) + "/" + m["key"].(string)
		if resp, ok := f.responses["get_entry:"+key]; ok {
			return resp, nil
		}
		return map[string]any{"ok": true, "found": false}, nil
	case "extract_sections":
		sections := m["sections"].([]string)
		name := sections[0]
		if resp, ok := f.responses["section:"+name]; ok {
			return map[string]any{"ok": true, "sections": map[string]any{name: resp}}, nil
		}
		return map[string]any{"ok": true, "sections": map[string]any{name: map[string]any{}}}, nil
	case "count_keys":
		return map[string]any{"ok": true, "counts": map[string]any{}}, nil
	case "get_country_summaries":
		if resp, ok := f.responses["country_summaries"]; ok {
			return resp, nil
		}
		return map[string]any{"ok": true, "countries": []any{}}, nil
	}
	return map[string]any{"ok": true}, nil
}

func TestBuildPlayerIDDefaultsToZero(t *testing.T) {
	f := &fakeSession{responses: map[string]map[string]any{}}
	snap, err := build(f, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, snap.PlayerID)
	assert.Equal(t, 0, *snap.PlayerID)
	assert.Equal(t, FormatVersion, snap.FormatVersion)
}

func TestBuildLeadersIdentifiesRuler(t *testing.T) {
	f := &fakeSession{responses: map[string]map[string]any{
		"section:player": {
			"country": float64(7),
		},
		"get_entry:country/7": {
			"ok": true, "found": true,
			"entry": map[string]any{"ruler": float64(42)},
		},
		"section:leaders": {
			"42": map[string]any{"class": "official", "name": "Jane Doe", "level": float64(3)},
			"99": map[string]any{"class": "admiral", "name": "John Roe"},
		},
	}}

	snap, err := build(f, time.Now().UTC())
	require.NoError(t, err)
	require.NotNil(t, snap.Leaders.RulerID)
	assert.Equal(t, 42, *snap.Leaders.RulerID)
	assert.Equal(t, "Jane Doe", snap.Leaders.RulerName)
	assert.Equal(t, 2, snap.Leaders.Count)
}

func TestBuildWarsDetectsPlayerInvolvement(t *testing.T) {
	f := &fakeSession{responses: map[string]map[string]any{
		"section:player": {
			"country": float64(7),
		},
		"section:war": {
			"1": map[string]any{
				"name":      "Ubaric-Ziiran War",
				"attackers": []any{map[string]any{"country": float64(7)}},
				"defenders": []any{map[string]any{"country": float64(8)}},
			},
		},
	}}

	snap, err := build(f, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, snap.Wars.PlayerAtWar)
	assert.Equal(t, 1, snap.Wars.Count)

	want := WarsSignal{
		PlayerAtWar:     true,
		Count:           1,
		Wars:            []string{"Ubaric-Ziiran War"},
		BattleLocations: map[string][]string{},
	}
	if diff := cmp.Diff(want, snap.Wars); diff != "" {
		t.Errorf("wars signal mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildGeographyHandlesNoSystems(t *testing.T) {
	f := &fakeSession{responses: map[string]map[string]any{}}
	snap, err := build(f, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Geography.TotalPlayerSystems)
	assert.Nil(t, snap.Geography.EmpireCentroid)
}

func TestAngleToCompass(t *testing.T) {
	assert.Equal(t, "north", angleToCompass(0, -1))
	assert.Equal(t, "south", angleToCompass(0, 1))
	assert.Equal(t, "west", angleToCompass(1, 0))
	assert.Equal(t, "east", angleToCompass(-1, 0))
}
