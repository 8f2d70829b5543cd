// Package resolve implements the Name Resolver: a pure function turning
// raw localization keys, literal strings, and name-block templates into
// human-readable display strings.
package resolve

import (
	"regexp"
	"strings"

	"github.com/neper-stars/clausewitz/tree"
)

// Context narrows resolution for context-sensitive templates (fleet %SEQ%
// numbering, planet naming templates).
type Context string

const (
	ContextGeneric Context = "generic"
	ContextPlanet  Context = "planet"
	ContextCountry Context = "country"
	ContextSpecies Context = "species"
	ContextFleet   Context = "fleet"
)

// Source records which rule produced the display name.
type Source string

const (
	SourceMissing         Source = "missing"
	SourceLiteral         Source = "literal"
	SourceTemplate        Source = "template"
	SourceLocalizationKey Source = "localization_key"
	SourceFallback        Source = "fallback"
)

// Resolved is the structured result of resolving a name.
type Resolved struct {
	Display    string
	RawKey     string
	Source     Source
	Confidence float64
}

var (
	trailingDigitsRE = regexp.MustCompile(`([^0-9])([0-9]+)$`)
	ordinalRE        = regexp.MustCompile(`(?i)^([0-9]+)(ST|ND|RD|TH)$`)
	letterDigitRE    = regexp.MustCompile(`^[A-Za-z]+[0-9]+$`)
	romanNumerals    = map[string]bool{
		"I": true, "II": true, "III": true, "IV": true, "V": true,
		"VI": true, "VII": true, "VIII": true, "IX": true, "X": true,
	}
)

// Resolve turns v into a Resolved, given the surrounding context. A nil
// v (the field was absent from the document) resolves to the "Unknown"
// default with zero confidence.
func Resolve(v *tree.Value, context Context) Resolved {
	return ResolveDefault(v, context, "Unknown")
}

// ResolveDefault is Resolve with an explicit default display string for
// missing or unresolvable input.
func ResolveDefault(v *tree.Value, context Context, def string) Resolved {
	if v == nil {
		return Resolved{Display: def, Source: SourceMissing, Confidence: 0}
	}

	switch v.Kind {
	case tree.KindObject:
		return resolveNameBlock(v.Object, def, context)

	case tree.KindString, tree.KindIdentifier, tree.KindDate:
		raw := strings.TrimSpace(v.Text)
		if raw == "" {
			return Resolved{Display: def, Source: SourceMissing, Confidence: 0}
		}
		if isLikelyKey(raw) {
			return resolveLocalizationKey(raw)
		}
		return Resolved{Display: raw, Source: SourceLiteral, Confidence: 1.0}

	default:
		return Resolved{Display: v.AsKeyText(), Source: SourceFallback, Confidence: 0.2}
	}
}

func isLikelyKey(raw string) bool {
	if strings.Contains(raw, "_") {
		return true
	}
	prefixes := []string{
		"NAME_", "SPEC_", "ADJ_", "PRESCRIPTED_", "EMPIRE_DESIGN_",
		"FALLEN_EMPIRE_", "AWAKENED_EMPIRE_", "shipclass_", "TRANS_",
	}
	for _, p := range prefixes {
		if strings.HasPrefix(raw, p) {
			return true
		}
	}
	if isAllCapsAlpha(raw) && len(raw) > 4 {
		return true
	}
	// A bare letters-then-digits token (e.g. "humans1") is key-shaped even
	// without an underscore, so rule 5's trailing-digit split applies.
	return letterDigitRE.MatchString(raw)
}

func isAllCapsAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// resolveNameBlock resolves a name block: an object with a "key" field and
// an optional "variables" list of {key, value} entries.
func resolveNameBlock(block *tree.Object, def string, context Context) Resolved {
	keyVal, ok := block.Get("key")
	key := strings.TrimSpace(keyVal.AsKeyText())
	if !ok || key == "" {
		return Resolved{Display: def, Source: SourceMissing, Confidence: 0}
	}

	variables, _ := block.Get("variables")

	if key == "war_vs_adjectives" {
		v1 := resolveNumberedVar(variables, "1")
		v2 := resolveNumberedVar(variables, "2")
		v3 := resolveNumberedVar(variables, "3")
		return Resolved{
			Display:    v1 + "-" + v2 + " " + v3,
			RawKey:     key,
			Source:     SourceTemplate,
			Confidence: 0.9,
		}
	}

	if context == ContextFleet && key == "%SEQ%" {
		if num := findVariable(variables, "num"); num != nil && num.Kind == tree.KindObject {
			if numKey, ok := num.Object.Get("key"); ok {
				if n := strings.TrimSpace(numKey.AsKeyText()); n != "" {
					return Resolved{Display: "Fleet #" + n, RawKey: key, Source: SourceTemplate, Confidence: 0.95}
				}
			}
		}
		return Resolved{Display: def, RawKey: key, Source: SourceTemplate, Confidence: 0.3}
	}

	if context == ContextPlanet {
		if r, ok := resolvePlanetTemplate(key, variables, def); ok {
			return r
		}
		if idx := strings.Index(key, "_PLANET_"); idx >= 0 {
			tail := key[idx+len("_PLANET_"):]
			return Resolved{Display: formatKeyText(tail), RawKey: key, Source: SourceLocalizationKey, Confidence: 0.8}
		}
	}

	if strings.HasPrefix(key, "%") && strings.HasSuffix(key, "%") && len(key) > 1 {
		for i := 1; i <= 9; i++ {
			v := resolveNumberedVar(variables, itoa(i))
			if v != "" && v != "?" {
				return Resolved{Display: v, RawKey: key, Source: SourceTemplate, Confidence: 0.7}
			}
		}
	}

	var parts []string
	for _, entry := range listEntries(variables) {
		val, ok := entry.Object.Get("value")
		if !ok {
			continue
		}
		for _, extracted := range extractConcreteValues(val) {
			if extracted == "" || strings.HasPrefix(extracted, "%") {
				continue
			}
			r := ResolveDefault(scalarValue(extracted), ContextGeneric, "")
			if r.Display != "" {
				parts = append(parts, strings.TrimSpace(r.Display))
			}
		}
	}
	parts = nonEmpty(parts)
	if len(parts) > 0 {
		return Resolved{Display: strings.Join(parts, " "), RawKey: key, Source: SourceTemplate, Confidence: 0.85}
	}

	return resolveLocalizationKey(key)
}

// resolvePlanetTemplate handles the three known planet-naming templates.
// ok is false when key is not one of them, so the caller can fall through
// to other rules.
func resolvePlanetTemplate(key string, variables tree.Value, def string) (Resolved, bool) {
	switch {
	case key == "PLANET_NAME_FORMAT":
		var parentName, numeral string
		for _, entry := range listEntries(variables) {
			varKey, _ := entry.Object.Get("key")
			value, hasValue := entry.Object.Get("value")
			switch varKey.AsKeyText() {
			case "PARENT":
				if hasValue && value.Kind == tree.KindObject {
					parentName = ResolveDefault(&value, ContextPlanet, "").Display
				}
			case "NUMERAL":
				if hasValue && value.Kind == tree.KindObject {
					if nk, ok := value.Object.Get("key"); ok {
						numeral = strings.TrimSpace(nk.AsKeyText())
					}
				}
			}
		}
		switch {
		case parentName != "" && numeral != "":
			return Resolved{Display: parentName + " " + numeral, RawKey: key, Source: SourceTemplate, Confidence: 0.95}, true
		case parentName != "":
			return Resolved{Display: parentName, RawKey: key, Source: SourceTemplate, Confidence: 0.8}, true
		default:
			return Resolved{Display: def, RawKey: key, Source: SourceTemplate, Confidence: 0.3}, true
		}

	case strings.HasPrefix(key, "NEW_COLONY_NAME_"):
		colonyNum := strings.TrimSpace(strings.TrimPrefix(key, "NEW_COLONY_NAME_"))
		for _, entry := range listEntries(variables) {
			varKey, _ := entry.Object.Get("key")
			if varKey.AsKeyText() != "NAME" {
				continue
			}
			value, ok := entry.Object.Get("value")
			if !ok || value.Kind != tree.KindObject {
				continue
			}
			system := ResolveDefault(&value, ContextPlanet, "").Display
			if system != "" {
				display := system
				if colonyNum != "" {
					display = system + " " + colonyNum
				}
				return Resolved{Display: display, RawKey: key, Source: SourceTemplate, Confidence: 0.95}, true
			}
		}
		return Resolved{Display: strings.TrimSpace("Colony " + colonyNum), RawKey: key, Source: SourceTemplate, Confidence: 0.6}, true

	case key == "HABITAT_PLANET_NAME":
		for _, entry := range listEntries(variables) {
			varKey, _ := entry.Object.Get("key")
			vk := varKey.AsKeyText()
			if !strings.Contains(vk, "solar_system") && vk != "NAME" {
				continue
			}
			value, ok := entry.Object.Get("value")
			if !ok || value.Kind != tree.KindObject {
				continue
			}
			system := ResolveDefault(&value, ContextPlanet, "").Display
			if system != "" {
				return Resolved{Display: system + " Habitat", RawKey: key, Source: SourceTemplate, Confidence: 0.9}, true
			}
		}
		return Resolved{Display: "Habitat", RawKey: key, Source: SourceTemplate, Confidence: 0.6}, true
	}

	return Resolved{}, false
}

// resolveLocalizationKey applies the ordered prefix/suffix rules to a bare
// localization key string.
func resolveLocalizationKey(key string) Resolved {
	key = strings.TrimSpace(key)
	if key == "" {
		return Resolved{Display: "Unknown", Source: SourceMissing, Confidence: 0}
	}

	if suffix, ok := strings.CutPrefix(key, "AWAKENED_EMPIRE_"); ok {
		if isDigits(suffix) {
			return Resolved{Display: "Awakened Empire " + suffix, RawKey: key, Source: SourceLocalizationKey, Confidence: 0.9}
		}
		return Resolved{Display: "Awakened Empire (" + formatKeyText(suffix) + ")", RawKey: key, Source: SourceLocalizationKey, Confidence: 0.85}
	}

	if suffix, ok := strings.CutPrefix(key, "FALLEN_EMPIRE_"); ok {
		if isDigits(suffix) {
			return Resolved{Display: "Fallen Empire " + suffix, RawKey: key, Source: SourceLocalizationKey, Confidence: 0.9}
		}
		return Resolved{Display: "Fallen Empire (" + formatKeyText(suffix) + ")", RawKey: key, Source: SourceLocalizationKey, Confidence: 0.85}
	}

	if strings.HasPrefix(key, "TRANS_") {
		if key == "TRANS_FLEET" {
			return Resolved{Display: "Transport Fleet", RawKey: key, Source: SourceLocalizationKey, Confidence: 0.8}
		}
		suffix := strings.TrimPrefix(key, "TRANS_")
		return Resolved{Display: formatKeyText(suffix), RawKey: key, Source: SourceLocalizationKey, Confidence: 0.6}
	}

	if strings.HasPrefix(key, "shipclass_") {
		result := strings.TrimPrefix(key, "shipclass_")
		result = strings.TrimSuffix(result, "_name")
		return Resolved{Display: formatKeyText(result), RawKey: key, Source: SourceLocalizationKey, Confidence: 0.75}
	}

	if strings.HasSuffix(key, "_FLEET") && len(key) > len("_FLEET") {
		base := strings.TrimSuffix(key, "_FLEET")
		return Resolved{Display: formatKeyText(base) + " Fleet", RawKey: key, Source: SourceLocalizationKey, Confidence: 0.7}
	}

	if strings.HasPrefix(key, "EMPIRE_DESIGN_") {
		result := strings.TrimPrefix(key, "EMPIRE_DESIGN_")
		result = trailingDigitsRE.ReplaceAllString(result, "$1 $2")
		return Resolved{Display: formatKeyText(result), RawKey: key, Source: SourceLocalizationKey, Confidence: 0.8}
	}

	if strings.HasPrefix(key, "NAME_") {
		result := strings.TrimPrefix(key, "NAME_")
		return Resolved{Display: strings.ReplaceAll(result, "_", " "), RawKey: key, Source: SourceLocalizationKey, Confidence: 0.75}
	}

	prefixes := []string{
		"PRESCRIPTED_species_name_", "PRESCRIPTED_adjective_", "PRESCRIPTED_",
		"SPEC_", "ADJ_", "EMPIRE_", "COUNTRY_", "CIV_",
	}
	result := key
	for _, p := range prefixes {
		if strings.HasPrefix(result, p) {
			result = strings.TrimPrefix(result, p)
			break
		}
	}
	if strings.HasSuffix(result, "_name") && len(result) > len("_name") {
		result = strings.TrimSuffix(result, "_name")
	}
	result = trailingDigitsRE.ReplaceAllString(result, "$1 $2")
	return Resolved{Display: formatKeyText(result), RawKey: key, Source: SourceLocalizationKey, Confidence: 0.65}
}

func formatKeyText(text string) string {
	if text == "" {
		return ""
	}
	text = strings.TrimSpace(strings.ReplaceAll(text, "_", " "))
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	out := make([]string, len(fields))
	for i, w := range fields {
		out[i] = formatToken(w)
	}
	return strings.Join(out, " ")
}

func formatToken(token string) string {
	if token == "" {
		return token
	}
	if romanNumerals[token] {
		return token
	}
	if m := ordinalRE.FindStringSubmatch(token); m != nil {
		return m[1] + strings.ToLower(m[2])
	}
	if isAlpha(token) && (isAllCapsAlpha(token) || isAllLowerAlpha(token)) {
		return titleCase(token)
	}
	return token
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}
	return true
}

func isAllLowerAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}

func nonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolveNumberedVar resolves the variable named name (e.g. "1", "2", "3")
// to its display string, returning "?" when the variable is absent or
// unresolvable, matching the war_vs_adjectives template's literal "?"
// placeholder for missing parts.
func resolveNumberedVar(variables tree.Value, name string) string {
	val := findVariable(variables, name)
	if val == nil {
		return "?"
	}
	r := ResolveDefault(val, ContextGeneric, "?")
	if r.Display == "" {
		return "?"
	}
	return r.Display
}

func itoa(i int) string {
	if i < 10 {
		return string(rune('0' + i))
	}
	return ""
}

// findVariable looks up a {key, value} pair named name inside a variables
// list, returning the "value" sub-value, or nil if not found.
func findVariable(variables tree.Value, name string) *tree.Value {
	for _, entry := range listEntries(variables) {
		k, _ := entry.Object.Get("key")
		if k.AsKeyText() != name {
			continue
		}
		v, ok := entry.Object.Get("value")
		if !ok {
			return nil
		}
		return &v
	}
	return nil
}

// listEntries normalizes a variables field (which may be a List of
// objects, a single Object, or absent) into a slice of object-kind
// entries.
func listEntries(v tree.Value) []tree.Value {
	switch v.Kind {
	case tree.KindList:
		out := make([]tree.Value, 0, len(v.List))
		for _, item := range v.List {
			if item.Kind == tree.KindObject {
				out = append(out, item)
			}
		}
		return out
	case tree.KindObject:
		return []tree.Value{v}
	default:
		return nil
	}
}

// extractConcreteValues recursively extracts concrete string-ish values
// from a nested variable value structure: itself a string/identifier, or
// an object with a "key" and nested "variables".
func extractConcreteValues(v tree.Value) []string {
	var out []string
	switch v.Kind {
	case tree.KindString, tree.KindIdentifier, tree.KindDate:
		out = append(out, v.Text)
	case tree.KindObject:
		if k, ok := v.Object.Get("key"); ok {
			kt := k.AsKeyText()
			if kt != "" && !strings.HasPrefix(kt, "%") {
				out = append(out, kt)
			}
		}
		if vars, ok := v.Object.Get("variables"); ok {
			for _, entry := range listEntries(vars) {
				if val, ok := entry.Object.Get("value"); ok {
					out = append(out, extractConcreteValues(val)...)
				}
			}
		}
	default:
		out = append(out, v.AsKeyText())
	}
	return out
}

// scalarValue wraps a plain string as an Identifier-kind Value for feeding
// back through ResolveDefault (e.g. a concrete value extracted from a
// template variable).
func scalarValue(s string) *tree.Value {
	v := tree.Identifier(s, 0, 0)
	return &v
}
