package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neper-stars/clausewitz/tree"
)

func mustBuild(t *testing.T, src string) *tree.Object {
	t.Helper()
	doc, err := tree.Build([]byte(src))
	require.NoError(t, err)
	return doc
}

func TestResolveLiteral(t *testing.T) {
	v := tree.String("Earth", 0, 0)
	r := Resolve(&v, ContextGeneric)
	assert.Equal(t, "Earth", r.Display)
	assert.Equal(t, SourceLiteral, r.Source)
	assert.Equal(t, 1.0, r.Confidence)
}

func TestResolveMissingIsNilSafe(t *testing.T) {
	r := Resolve(nil, ContextGeneric)
	assert.Equal(t, "Unknown", r.Display)
	assert.Equal(t, SourceMissing, r.Source)
	assert.Equal(t, 0.0, r.Confidence)
}

func TestResolveSimplePrefixes(t *testing.T) {
	cases := map[string]string{
		"NAME_Earth":                 "Earth",
		"shipclass_science_ship_name": "Science Ship",
	}
	for raw, want := range cases {
		v := tree.Identifier(raw, 0, 0)
		r := Resolve(&v, ContextGeneric)
		assert.Equal(t, want, r.Display, raw)
	}
}

func TestResolveFallenEmpireNumbered(t *testing.T) {
	v := tree.Identifier("FALLEN_EMPIRE_3", 0, 0)
	r := Resolve(&v, ContextGeneric)
	assert.Equal(t, "Fallen Empire 3", r.Display)
}

func TestResolveFallenEmpireNamed(t *testing.T) {
	v := tree.Identifier("FALLEN_EMPIRE_SPIRITUALIST", 0, 0)
	r := Resolve(&v, ContextGeneric)
	assert.Equal(t, "Fallen Empire (Spiritualist)", r.Display)
}

func TestResolveTrailingDigitSplit(t *testing.T) {
	v := tree.Identifier("humans1", 0, 0)
	r := Resolve(&v, ContextGeneric)
	assert.Equal(t, "Humans 1", r.Display)
}

func TestResolveOrdinalFleet(t *testing.T) {
	v := tree.Identifier("1ST_FLEET", 0, 0)
	r := Resolve(&v, ContextGeneric)
	assert.Equal(t, "1st Fleet", r.Display)
}

func TestResolveRomanNumeralStaysUppercase(t *testing.T) {
	v := tree.Identifier("SOL_III", 0, 0)
	r := Resolve(&v, ContextGeneric)
	assert.Equal(t, "Sol III", r.Display)
}

func TestResolveFleetSeqTemplate(t *testing.T) {
	doc := mustBuild(t, `name={ key="%SEQ%" variables={ { key="num" value={ key="1" } } } }`)
	v, ok := doc.Get("name")
	require.True(t, ok)
	r := Resolve(&v, ContextFleet)
	assert.Equal(t, "Fleet #1", r.Display)
}

func TestResolveWarVsAdjectivesScenario(t *testing.T) {
	// Scenario from the testable-properties list: Ubaric-Ziiran War.
	doc := mustBuild(t, `name={
		key="war_vs_adjectives"
		variables={
			{ key="1" value={ key="SPEC_Ubaric" } }
			{ key="2" value={ key="SPEC_Ziiran" } }
			{ key="3" value={ key="NAME_War" } }
		}
	}`)
	v, ok := doc.Get("name")
	require.True(t, ok)
	r := Resolve(&v, ContextGeneric)
	assert.Equal(t, "Ubaric-Ziiran War", r.Display)
}

func TestResolveWarVsAdjectivesMissingPartRendersQuestionMark(t *testing.T) {
	doc := mustBuild(t, `name={
		key="war_vs_adjectives"
		variables={
			{ key="1" value={ key="SPEC_Ubaric" } }
			{ key="3" value={ key="NAME_War" } }
		}
	}`)
	v, _ := doc.Get("name")
	r := Resolve(&v, ContextGeneric)
	assert.Equal(t, "Ubaric-? War", r.Display)
}

func TestResolvePlanetNameFormat(t *testing.T) {
	doc := mustBuild(t, `name={
		key="PLANET_NAME_FORMAT"
		variables={
			{ key="PARENT" value={ key="NAME_Sol" } }
			{ key="NUMERAL" value={ key="III" } }
		}
	}`)
	v, _ := doc.Get("name")
	r := Resolve(&v, ContextPlanet)
	assert.Equal(t, "Sol III", r.Display)
}

func TestResolveIsPure(t *testing.T) {
	v := tree.Identifier("EMPIRE_DESIGN_3", 0, 0)
	r1 := Resolve(&v, ContextGeneric)
	r2 := Resolve(&v, ContextGeneric)
	assert.Equal(t, r1, r2)
}
