// Package likelihood compares binned mutation counts against reference
// distributions with a Laplace-smoothed multinomial log-likelihood.
package likelihood

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// LogLikelihood returns
//
//	Σ_i observed[i] * log((reference[i]+1) / Σ_j(reference[j]+1))
//
// The +1 smoothing keeps every bin probability positive, so the result is
// finite for any non-negative counts. Both vectors must come from the same
// bin layout; a length mismatch panics.
func LogLikelihood(reference, observed []int) float64 {
	if len(reference) != len(observed) {
		panic(fmt.Sprintf("likelihood: bin count mismatch (%d reference, %d observed)", len(reference), len(observed)))
	}
	if len(reference) == 0 {
		return 0
	}

	logp := make([]float64, len(reference))
	for i, c := range reference {
		logp[i] = float64(c) + 1
	}
	logTotal := math.Log(floats.Sum(logp))
	for i := range logp {
		logp[i] = math.Log(logp[i]) - logTotal
	}

	obs := make([]float64, len(observed))
	for i, c := range observed {
		obs[i] = float64(c)
	}
	return floats.Dot(obs, logp)
}

// Score is the log-likelihood of the observed counts under one distribution.
type Score struct {
	Name          string  `json:"name"`
	LogLikelihood float64 `json:"log_likelihood"`
}

// less orders scores as (value, name) tuples.
func less(a, b Score) bool {
	if a.LogLikelihood != b.LogLikelihood {
		return a.LogLikelihood < b.LogLikelihood
	}
	return a.Name < b.Name
}

// Ranking holds scores in descending order. Ties in value fall back to the
// name, so the lexicographically greater name ranks first.
type Ranking struct {
	Scores []Score
}

// Rank sorts scores from best to worst fit. The input is not modified.
func Rank(scores []Score) Ranking {
	sorted := append([]Score(nil), scores...)
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[j], sorted[i]) })
	return Ranking{Scores: sorted}
}

// Compare scores observed against each named reference vector and ranks them.
func Compare(observed []int, references map[string][]int) Ranking {
	scores := make([]Score, 0, len(references))
	for name, ref := range references {
		scores = append(scores, Score{Name: name, LogLikelihood: LogLikelihood(ref, observed)})
	}
	return Rank(scores)
}

// Best returns the top-ranked score.
func (r Ranking) Best() (Score, bool) {
	if len(r.Scores) == 0 {
		return Score{}, false
	}
	return r.Scores[0], true
}

// Lookup returns the score for a distribution name.
func (r Ranking) Lookup(name string) (Score, bool) {
	for _, s := range r.Scores {
		if s.Name == name {
			return s, true
		}
	}
	return Score{}, false
}

// Values returns the log-likelihoods in ranked order.
func (r Ranking) Values() []float64 {
	out := make([]float64, len(r.Scores))
	for i, s := range r.Scores {
		out[i] = s.LogLikelihood
	}
	return out
}
