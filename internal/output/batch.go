package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/covarr-net/smdp/internal/analysis"
)

// BatchWriter writes one row per analysed lineage and keeps a tally of
// best-fit distributions for the summary.
type BatchWriter struct {
	w         *tabwriter.Writer
	names     []string
	bestFits  map[string]int
	total     int
	malformed int
	awaiting  int
}

// NewBatchWriter creates a batch writer with one likelihood column per
// distribution name, in the given order.
func NewBatchWriter(w io.Writer, names []string) *BatchWriter {
	return &BatchWriter{
		w:        tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
		names:    names,
		bestFits: make(map[string]int),
	}
}

// WriteHeader writes the column header.
func (b *BatchWriter) WriteHeader() error {
	cols := []string{"Lineage", "Status", "Mutations", "Ti/Tv"}
	cols = append(cols, b.names...)
	cols = append(cols, "Best_fit", "Times_more_likely", "Compared_to", "Mutator_confirmed", "Mutator_potential")
	_, err := fmt.Fprintln(b.w, strings.Join(cols, "\t"))
	return err
}

// Write writes one lineage row.
func (b *BatchWriter) Write(name string, res *analysis.Result) error {
	b.total++
	switch res.Status {
	case analysis.StatusMalformed:
		b.malformed++
	case analysis.StatusAwaitingInput:
		b.awaiting++
	default:
		b.bestFits[res.BestFit]++
	}

	titv := "-"
	if res.TiTvRatio != nil {
		titv = fmt.Sprintf("%.2f", *res.TiTvRatio)
	}

	row := []string{name, res.Status.String(), fmt.Sprintf("%d", res.MutationCount), titv}
	for _, n := range b.names {
		ll := "-"
		for _, sc := range res.Likelihoods {
			if sc.Name == n {
				ll = fmt.Sprintf("%.2f", sc.LogLikelihood)
			}
		}
		row = append(row, ll)
	}

	best, ratio, compared := "-", "-", "-"
	if res.Status == analysis.StatusOK && !res.Comparison.NeedsInput {
		best = res.BestFit
		ratio = FormatRatio(res.Comparison.Ratio)
		compared = res.Comparison.ComparedTo
	}
	row = append(row, best, ratio, compared,
		orDash(joinInts(res.MutatorSites.Confirmed)), orDash(joinInts(res.MutatorSites.Potential)))

	_, err := fmt.Fprintln(b.w, strings.Join(row, "\t"))
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Flush flushes the tabwriter.
func (b *BatchWriter) Flush() error {
	return b.w.Flush()
}

// WriteSummary writes best-fit counts to the given writer (typically stderr).
func (b *BatchWriter) WriteSummary(w io.Writer) {
	fmt.Fprintf(w, "\nBatch Summary:\n")
	fmt.Fprintf(w, "  Total lineages: %d\n", b.total)
	if b.malformed > 0 {
		fmt.Fprintf(w, "  Malformed:      %d\n", b.malformed)
	}
	if b.awaiting > 0 {
		fmt.Fprintf(w, "  No mutations:   %d\n", b.awaiting)
	}

	names := make([]string, 0, len(b.bestFits))
	for n := range b.bestFits {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  Best fit %-15s %d\n", displayName(n)+":", b.bestFits[n])
	}
}
