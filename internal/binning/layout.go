package binning

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/covarr-net/smdp/internal/genome"
)

// GeneTable lists gene start coordinates in genome order. The last entry
// marks the end of the final gene and does not open a bin of its own.
type GeneTable struct {
	Starts []int
	Names  []string
}

// Tables holds the static gene tables used by the gene-based schemes.
type Tables struct {
	Gene       GeneTable
	GenesSplit GeneTable
}

// Binned holds per-bin counts and labels in genome order.
// Centers is only set for fixed-width schemes.
type Binned struct {
	Counts  []int
	Labels  []string
	Centers []float64
}

// Total returns the sum of all bin counts.
func (b Binned) Total() int {
	n := 0
	for _, c := range b.Counts {
		n += c
	}
	return n
}

// Layout is the resolved bin geometry for one Scheme. It is immutable and
// safe for concurrent use.
type Layout struct {
	scheme  Scheme
	edges   []int
	labels  []string
	centers []float64
}

// NewLayout resolves scheme into bin edges and labels.
func NewLayout(scheme Scheme, tables Tables) (*Layout, error) {
	switch scheme.kind {
	case KindFixedWidth:
		return fixedLayout(scheme)
	case KindGene:
		return geneLayout(scheme, tables.Gene)
	case KindGenesSplit:
		return geneLayout(scheme, tables.GenesSplit)
	}
	return nil, fmt.Errorf("unknown bin scheme kind %d", scheme.kind)
}

func fixedLayout(scheme Scheme) (*Layout, error) {
	w := scheme.width
	if w <= 0 {
		return nil, fmt.Errorf("bin width must be positive, got %d", w)
	}
	var edges []int
	for e := genome.MinPosition; ; e += w {
		edges = append(edges, e)
		if e >= genome.GenomeLength+1 {
			break
		}
	}
	l := &Layout{scheme: scheme, edges: edges}
	for i := 0; i+1 < len(edges); i++ {
		c := 0.5 * float64(edges[i]+edges[i+1])
		l.centers = append(l.centers, c)
		l.labels = append(l.labels, strconv.FormatFloat(c, 'f', -1, 64))
	}
	return l, nil
}

func geneLayout(scheme Scheme, table GeneTable) (*Layout, error) {
	if len(table.Starts) < 2 {
		return nil, fmt.Errorf("%s table needs at least 2 boundaries, got %d", scheme, len(table.Starts))
	}
	if len(table.Names) != len(table.Starts) {
		return nil, fmt.Errorf("%s table has %d names for %d boundaries", scheme, len(table.Names), len(table.Starts))
	}
	if !sort.IntsAreSorted(table.Starts) {
		return nil, fmt.Errorf("%s table is not in genome order", scheme)
	}
	edges := append([]int(nil), table.Starts...)
	labels := append([]string(nil), table.Names[:len(table.Names)-1]...)
	return &Layout{scheme: scheme, edges: edges, labels: labels}, nil
}

// Scheme returns the scheme this layout was built from.
func (l *Layout) Scheme() Scheme { return l.scheme }

// Len returns the number of bins.
func (l *Layout) Len() int { return len(l.edges) - 1 }

// Labels returns the bin labels in genome order.
func (l *Layout) Labels() []string { return l.labels }

// Count histograms positions into right-open bins [edge[i], edge[i+1]).
// Positions contained in mask are removed first; gene schemes also drop the
// 5' leader. Repeated positions are counted once per occurrence, so
// reference multisets keep their weights.
func (l *Layout) Count(positions []int, mask genome.SiteSet) []int {
	counts := make([]int, l.Len())
	gene := l.scheme.kind != KindFixedWidth
	lo, hi := l.edges[0], l.edges[len(l.edges)-1]
	for _, p := range positions {
		if mask.Contains(p) {
			continue
		}
		if gene && p <= genome.LeaderEnd {
			continue
		}
		if p < lo || p >= hi {
			continue
		}
		// first edge strictly greater than p closes the bin
		i := sort.SearchInts(l.edges, p+1) - 1
		counts[i]++
	}
	return counts
}

// Bin counts positions and returns them with the layout's labels.
func (l *Layout) Bin(positions []int, mask genome.SiteSet) Binned {
	return Binned{
		Counts:  l.Count(positions, mask),
		Labels:  l.labels,
		Centers: l.centers,
	}
}
