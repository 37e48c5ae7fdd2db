// Package output provides report formatters for analysis results.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/covarr-net/smdp/internal/analysis"
)

// Messages shown instead of numbers when there is nothing to report.
const (
	MsgMalformed = "Please check your mutation list: each entry must be a genome position, " +
		"optionally flanked by nucleotides and ins/del markers (e.g. C897A, del23009)."
	MsgAwaitingInput = "Please enter a comma-separated list of lineage-defining mutations."
)

// sciThreshold is the ratio above which values are shown in scientific notation.
const sciThreshold = 99999

// FormatRatio formats a times-more-likely value.
func FormatRatio(r float64) string {
	if r > sciThreshold {
		return fmt.Sprintf("%.1e", r)
	}
	return fmt.Sprintf("%.2f", r)
}

// displayName replaces underscores in distribution names with spaces.
func displayName(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}

// TextWriter writes a human-readable report.
type TextWriter struct {
	w *bufio.Writer
}

// NewTextWriter creates a new text report writer.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: bufio.NewWriter(w)}
}

// Write writes the report for one result.
func (tw *TextWriter) Write(res *analysis.Result) error {
	w := tw.w
	fmt.Fprintf(w, "Number of mutations: %d\n", res.MutationCount)

	if res.Status == analysis.StatusMalformed {
		fmt.Fprintf(w, "Malformed mutation: %s\n%s\n", res.MalformedToken, MsgMalformed)
		return nil
	}

	if res.TiTvRatio != nil {
		fmt.Fprintf(w, "Transition/Transversion ratio: %.2f\n", *res.TiTvRatio)
	}

	fmt.Fprintf(w, "\nLog Likelihoods (bin size %s):\n", res.Scheme)
	for _, sc := range res.Likelihoods {
		fmt.Fprintf(w, "  %s: %.2f\n", displayName(sc.Name), sc.LogLikelihood)
	}

	if res.Comparison.NeedsInput {
		fmt.Fprintf(w, "\n%s\n", MsgAwaitingInput)
		return nil
	}

	fmt.Fprintf(w, "\nBest fit distribution: %s\n", displayName(res.BestFit))
	fmt.Fprintf(w, "(%s times more likely than the %s distribution)\n",
		FormatRatio(res.Comparison.Ratio), displayName(res.Comparison.ComparedTo))

	fmt.Fprintf(w, "\nMutator lineage analysis:\n")
	if len(res.MutatorSites.Confirmed) > 0 {
		fmt.Fprintf(w, "  Confirmed: %s\n", joinInts(res.MutatorSites.Confirmed))
	}
	if len(res.MutatorSites.Potential) > 0 {
		fmt.Fprintf(w, "  Potential: %s\n", joinInts(res.MutatorSites.Potential))
	}
	if !res.MutatorSites.Any() {
		fmt.Fprintf(w, "  No mutator lineage detected\n")
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TextWriter) Flush() error {
	return tw.w.Flush()
}
