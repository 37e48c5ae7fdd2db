package likelihood

import (
	"fmt"
	"math"
)

// Basis selects what the best fit is compared against.
type Basis struct {
	baseline string
}

// NextBest compares the best fit against the second-ranked distribution.
func NextBest() Basis { return Basis{} }

// Baseline compares the best fit against a fixed distribution.
func Baseline(name string) Basis { return Basis{baseline: name} }

// String returns "next_best" or the baseline distribution name.
func (b Basis) String() string {
	if b.baseline == "" {
		return "next_best"
	}
	return b.baseline
}

// ParseBasis accepts "next_best" (or "") or a distribution name.
func ParseBasis(s string) Basis {
	if s == "" || s == "next_best" {
		return NextBest()
	}
	return Baseline(s)
}

// Comparison is how many times more likely the best fit is than ComparedTo.
// NeedsInput is set instead of a ratio when there was nothing to compare.
type Comparison struct {
	Ratio      float64 `json:"ratio"`
	ComparedTo string  `json:"compared_to"`
	NeedsInput bool    `json:"needs_input"`
}

// Relative computes exp(best - other) for the chosen basis. If the lowest
// ranked log-likelihood is exactly 0 no mutations were observed, and the
// result asks for input instead.
func Relative(r Ranking, basis Basis) (Comparison, error) {
	if len(r.Scores) == 0 {
		return Comparison{NeedsInput: true}, nil
	}
	values := r.Values()
	if values[len(values)-1] == 0 {
		return Comparison{NeedsInput: true}, nil
	}
	best := r.Scores[0]

	var other Score
	if basis.baseline == "" {
		if len(r.Scores) < 2 {
			return Comparison{}, fmt.Errorf("next-best comparison needs at least 2 distributions")
		}
		other = r.Scores[1]
	} else {
		s, ok := r.Lookup(basis.baseline)
		if !ok {
			return Comparison{}, fmt.Errorf("baseline distribution %q not ranked", basis.baseline)
		}
		other = s
	}

	return Comparison{
		Ratio:      math.Exp(best.LogLikelihood - other.LogLikelihood),
		ComparedTo: other.Name,
	}, nil
}
