// Package signature classifies the substitution spectrum of a mutation set
// and flags changes at nsp14 mutator sites.
package signature

import (
	"strings"
	"unicode"

	"github.com/covarr-net/smdp/internal/mutation"
)

// transitions maps each base to its purine/pyrimidine transition partner.
var transitions = map[byte]byte{
	'A': 'G',
	'G': 'A',
	'C': 'T',
	'T': 'C',
}

// TiTv holds transition and transversion counts.
type TiTv struct {
	Transitions   int `json:"transitions"`
	Transversions int `json:"transversions"`
}

// Ratio returns transitions per transversion.
func (t TiTv) Ratio() float64 {
	return float64(t.Transitions) / float64(t.Transversions)
}

// ClassifyTransitions counts substitutions in tokens written as ref, position,
// alt (e.g. "C897T"). Tokens without both bases, such as bare positions and
// indels, count towards neither class. A zero transversion count is reported
// as 1 so that Ratio is always defined.
//
// The tokens are validated first; a malformed set returns a
// *mutation.ParseError.
func ClassifyTransitions(tokens mutation.TokenSet) (TiTv, error) {
	if err := tokens.Validate(); err != nil {
		return TiTv{}, err
	}

	var out TiTv
	for _, tok := range tokens {
		bases := strings.Map(func(r rune) rune {
			if unicode.IsDigit(r) {
				return -1
			}
			return r
		}, tok)
		if len(bases) != 2 {
			continue
		}
		ref, alt := bases[0], bases[1]
		partner, ok := transitions[ref]
		if !ok || ref == alt {
			continue
		}
		if _, ok := transitions[alt]; !ok {
			continue
		}
		if partner == alt {
			out.Transitions++
		} else {
			out.Transversions++
		}
	}

	if out.Transversions == 0 {
		out.Transversions = 1
	}
	return out, nil
}
