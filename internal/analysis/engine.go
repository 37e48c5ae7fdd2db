// Package analysis runs the parse, bin, likelihood and signature stages for a
// user mutation set against the reference distributions.
package analysis

import (
	"fmt"

	"github.com/exascience/pargo/parallel"
	"go.uber.org/zap"

	"github.com/covarr-net/smdp/internal/binning"
	"github.com/covarr-net/smdp/internal/genome"
	"github.com/covarr-net/smdp/internal/likelihood"
	"github.com/covarr-net/smdp/internal/reference"
)

// Options configures an Engine.
type Options struct {
	// Basis selects what the best fit is compared with.
	Basis likelihood.Basis
}

// schemeRefs holds the binned references for one scheme.
type schemeRefs struct {
	layout *binning.Layout
	counts map[string][]int
}

// Engine is the immutable analysis context. It is built once per process
// and is safe for concurrent use.
type Engine struct {
	set     *reference.Set
	basis   likelihood.Basis
	schemes map[binning.Scheme]*schemeRefs
	logger  *zap.Logger
}

// NewEngine resolves every supported bin scheme and bins each reference
// distribution once.
func NewEngine(set *reference.Set, opts Options) (*Engine, error) {
	if len(set.Distributions) == 0 {
		return nil, fmt.Errorf("no reference distributions loaded")
	}
	if name := opts.Basis.String(); name != likelihood.NextBest().String() {
		if _, ok := set.Get(name); !ok {
			return nil, fmt.Errorf("comparison baseline %q is not a loaded distribution", name)
		}
	}

	e := &Engine{
		set:     set,
		basis:   opts.Basis,
		schemes: make(map[binning.Scheme]*schemeRefs),
		logger:  zap.NewNop(),
	}

	schemes := binning.AllSchemes()
	for _, s := range schemes {
		layout, err := binning.NewLayout(s, set.Static.Tables)
		if err != nil {
			return nil, fmt.Errorf("bin scheme %s: %w", s, err)
		}
		e.schemes[s] = &schemeRefs{layout: layout, counts: make(map[string][]int)}
	}

	// One task per (scheme, distribution); each writes a distinct slot.
	nd := len(set.Distributions)
	binned := make([][]int, len(schemes)*nd)
	parallel.Range(0, len(binned), 0, func(low, high int) {
		for i := low; i < high; i++ {
			refs := e.schemes[schemes[i/nd]]
			d := set.Distributions[i%nd]
			binned[i] = refs.layout.Count(d.Positions, d.Mask)
		}
	})
	for i, counts := range binned {
		e.schemes[schemes[i/nd]].counts[set.Distributions[i%nd].Name] = counts
	}

	return e, nil
}

// SetLogger sets the logger for per-query debug messages.
func (e *Engine) SetLogger(l *zap.Logger) {
	e.logger = l
}

// Distributions returns the reference distributions in load order.
func (e *Engine) Distributions() []*reference.Distribution {
	return e.set.Distributions
}

// ReferenceBins returns the binned counts of a reference distribution.
func (e *Engine) ReferenceBins(s binning.Scheme, name string) (binning.Binned, error) {
	refs, ok := e.schemes[s]
	if !ok {
		return binning.Binned{}, fmt.Errorf("unsupported bin scheme %s", s)
	}
	counts, ok := refs.counts[name]
	if !ok {
		return binning.Binned{}, fmt.Errorf("unknown distribution %q", name)
	}
	b := refs.layout.Bin(nil, genome.SiteSet{})
	b.Counts = counts
	return b, nil
}
