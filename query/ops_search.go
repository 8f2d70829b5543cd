package query

import "github.com/coregx/ahocorasick"

// ContainsTokens implements op 6: contains_tokens. It builds a multi-
// pattern Aho-Corasick automaton once per call over the raw gamestate
// text and reports, for each requested token, whether it occurs as a
// substring anywhere in the text. Intended for cheap existence probes,
// not structural queries.
func (e *Engine) ContainsTokens(tokens []string) (map[string]bool, error) {
	out := make(map[string]bool, len(tokens))
	if len(tokens) == 0 {
		return out, nil
	}
	for _, t := range tokens {
		out[t] = false
	}

	automaton, err := ahocorasick.NewBuilder().
		AddStrings(tokens).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, &Error{Message: "failed to build token matcher: " + err.Error()}
	}

	for _, m := range automaton.FindAllOverlapping([]byte(e.gamestate)) {
		out[tokens[m.PatternID]] = true
	}
	return out, nil
}
