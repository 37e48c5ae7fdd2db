package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/covarr-net/smdp/internal/binning"
	"github.com/covarr-net/smdp/internal/genome"
	"github.com/covarr-net/smdp/internal/likelihood"
	"github.com/covarr-net/smdp/internal/mutation"
	"github.com/covarr-net/smdp/internal/signature"
)

// Status tells callers which message to show for a result.
type Status int

const (
	// StatusOK means at least one usable position was analysed.
	StatusOK Status = iota
	// StatusAwaitingInput means there were no usable positions.
	StatusAwaitingInput
	// StatusMalformed means a token failed the mutation grammar.
	StatusMalformed
)

func (s Status) String() string {
	switch s {
	case StatusAwaitingInput:
		return "awaiting_input"
	case StatusMalformed:
		return "malformed"
	default:
		return "ok"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// FailureSentinel is what the alignment collaborator returns when it could
// not derive mutations.
const FailureSentinel = "Error"

// Result bundles everything reported for one mutation set.
type Result struct {
	ID              string                 `json:"id"`
	Status          Status                 `json:"status"`
	BinScheme       binning.Scheme         `json:"-"`
	Scheme          string                 `json:"bin_size"`
	MutationCount   int                    `json:"mutations_count"`
	Positions       []int                  `json:"-"`
	TiTv            *signature.TiTv        `json:"transitions_transversions,omitempty"`
	TiTvRatio       *float64               `json:"transition_transversion_ratio"`
	Likelihoods     []likelihood.Score     `json:"likelihoods"`
	BestFit         string                 `json:"best_fit,omitempty"`
	Comparison      likelihood.Comparison  `json:"comparison"`
	MutatorSites    signature.MutatorSites `json:"mutator_lineage"`
	MalformedToken  string                 `json:"malformed_token,omitempty"`
	UserBins        binning.Binned         `json:"-"`
	UserBinsByModel map[string][]int       `json:"-"`
}

// Analyze runs the full pipeline on raw comma-separated mutation text.
//
// Malformed input is reported through Status and MalformedToken; the
// likelihoods are still computed from whatever positions could be read, so
// the result is always renderable, but no best fit is named. When no
// position can be read every likelihood is 0 and the comparison asks for
// input.
func (e *Engine) Analyze(raw string, scheme binning.Scheme) (*Result, error) {
	refs, ok := e.schemes[scheme]
	if !ok {
		return nil, fmt.Errorf("unsupported bin scheme %s", scheme)
	}

	tokens := mutation.Split(raw)
	res := &Result{
		ID:            uuid.NewString(),
		BinScheme:     scheme,
		Scheme:        scheme.String(),
		MutationCount: len(tokens),
	}

	titv, err := signature.ClassifyTransitions(tokens)
	var pe *mutation.ParseError
	switch {
	case errors.As(err, &pe):
		res.Status = StatusMalformed
		res.MalformedToken = pe.Token
	case err != nil:
		return nil, err
	default:
		res.TiTv = &titv
		ratio := titv.Ratio()
		res.TiTvRatio = &ratio
		res.MutatorSites = signature.ClassifyMutatorSites(tokens, e.set.Static.Panel)
	}

	positions, ok := mutation.ExtractPositions(tokens)
	if !ok {
		positions = nil
	}
	res.Positions = positions
	if len(positions) == 0 && res.Status == StatusOK {
		res.Status = StatusAwaitingInput
	}

	res.UserBins = refs.layout.Bin(positions, genome.SiteSet{})
	res.UserBinsByModel = make(map[string][]int, len(e.set.Distributions))
	scores := make([]likelihood.Score, 0, len(e.set.Distributions))
	for _, d := range e.set.Distributions {
		observed := res.UserBins.Counts
		if !d.Mask.Empty() {
			observed = refs.layout.Count(positions, d.Mask)
		}
		res.UserBinsByModel[d.Name] = observed
		scores = append(scores, likelihood.Score{
			Name:          d.Name,
			LogLikelihood: likelihood.LogLikelihood(refs.counts[d.Name], observed),
		})
	}
	res.Likelihoods = scores

	ranking := likelihood.Rank(scores)
	if best, ok := ranking.Best(); ok {
		res.BestFit = best.Name
	}
	res.Comparison, err = likelihood.Relative(ranking, e.basis)
	if err != nil {
		return nil, fmt.Errorf("compare distributions: %w", err)
	}
	if res.Comparison.NeedsInput && res.Status == StatusOK {
		res.Status = StatusAwaitingInput
	}
	if res.Status != StatusOK {
		res.BestFit = ""
		res.Comparison = likelihood.Comparison{NeedsInput: true}
	}

	e.logger.Debug("analysed mutation set",
		zap.String("id", res.ID),
		zap.String("bin_size", res.Scheme),
		zap.Int("mutations", res.MutationCount),
		zap.Int("positions", len(positions)),
		zap.Stringer("status", res.Status),
		zap.String("best_fit", res.BestFit))

	return res, nil
}

// AnalyzeAlignment analyses the output of the alignment collaborator. A
// collaborator error or the "Error" sentinel is treated as no input.
func (e *Engine) AnalyzeAlignment(mutations string, alignErr error, scheme binning.Scheme) (*Result, error) {
	if alignErr != nil || strings.HasPrefix(mutations, FailureSentinel) {
		if alignErr != nil {
			e.logger.Warn("alignment failed, analysing empty mutation set", zap.Error(alignErr))
		}
		mutations = ""
	}
	return e.Analyze(mutations, scheme)
}
