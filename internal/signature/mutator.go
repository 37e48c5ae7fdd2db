package signature

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/covarr-net/smdp/internal/genome"
	"github.com/covarr-net/smdp/internal/mutation"
)

// Site types in a mutator panel table.
const (
	SiteConfirmed = "confirmed"
	SitePotential = "potential"
)

// Panel holds the nsp14 exonuclease positions where a change is known to
// raise the mutation rate (Confirmed) or lies in the proofreading domain
// (Potential).
type Panel struct {
	Confirmed genome.SiteSet
	Potential genome.SiteSet
}

// ParsePanel reads a CSV with a header and columns position, type[, ...].
// type is "confirmed" or "potential".
func ParsePanel(r io.Reader) (Panel, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'

	records, err := cr.ReadAll()
	if err != nil {
		return Panel{}, fmt.Errorf("read mutator panel: %w", err)
	}
	if len(records) == 0 {
		return Panel{}, fmt.Errorf("mutator panel: empty file")
	}

	var confirmed, potential []int
	for i, rec := range records[1:] {
		if len(rec) < 2 {
			return Panel{}, fmt.Errorf("mutator panel line %d: expected position,type", i+2)
		}
		pos, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil || !genome.InRange(pos) {
			return Panel{}, fmt.Errorf("mutator panel line %d: invalid position %q", i+2, rec[0])
		}
		switch strings.ToLower(strings.TrimSpace(rec[1])) {
		case SiteConfirmed:
			confirmed = append(confirmed, pos)
		case SitePotential:
			potential = append(potential, pos)
		default:
			return Panel{}, fmt.Errorf("mutator panel line %d: unknown site type %q", i+2, rec[1])
		}
	}
	return Panel{
		Confirmed: genome.NewSiteSet(confirmed...),
		Potential: genome.NewSiteSet(potential...),
	}, nil
}

// MutatorSites lists the input positions that hit the panel.
type MutatorSites struct {
	Confirmed []int `json:"confirmed"`
	Potential []int `json:"potential"`
}

// Any reports whether any panel site was hit.
func (m MutatorSites) Any() bool {
	return len(m.Confirmed) > 0 || len(m.Potential) > 0
}

// ClassifyMutatorSites intersects the positions of tokens with the panel.
func ClassifyMutatorSites(tokens mutation.TokenSet, panel Panel) MutatorSites {
	positions, ok := mutation.ExtractPositions(tokens)
	if !ok {
		return MutatorSites{}
	}
	return MutatorSites{
		Confirmed: panel.Confirmed.Intersect(positions),
		Potential: panel.Potential.Intersect(positions),
	}
}
