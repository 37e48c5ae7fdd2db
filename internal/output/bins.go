package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/covarr-net/smdp/internal/analysis"
	"github.com/covarr-net/smdp/internal/binning"
	"github.com/covarr-net/smdp/internal/reference"
)

// ReferenceBinner provides binned reference counts.
type ReferenceBinner interface {
	Distributions() []*reference.Distribution
	ReferenceBins(s binning.Scheme, name string) (binning.Binned, error)
}

// BinsWriter writes the per-bin mutation proportions of the input and of
// each reference distribution, one bin per row, for plotting elsewhere.
type BinsWriter struct {
	w    *bufio.Writer
	refs ReferenceBinner
}

// NewBinsWriter creates a new tab-delimited bins writer.
func NewBinsWriter(w io.Writer, refs ReferenceBinner) *BinsWriter {
	return &BinsWriter{w: bufio.NewWriter(w), refs: refs}
}

// Write writes the header and one row per bin. Proportions are bin counts
// divided by the total number of mutations of each source.
func (bw *BinsWriter) Write(res *analysis.Result) error {
	scheme := res.BinScheme
	dists := bw.refs.Distributions()
	columns := []string{"bin", "input"}
	refBins := make([]binning.Binned, len(dists))
	for i, d := range dists {
		columns = append(columns, d.Name)
		var err error
		if refBins[i], err = bw.refs.ReferenceBins(scheme, d.Name); err != nil {
			return err
		}
	}
	if _, err := bw.w.WriteString(strings.Join(columns, "\t") + "\n"); err != nil {
		return err
	}

	user := res.UserBins
	nPos := len(res.Positions)
	for i, label := range user.Labels {
		values := []string{label, proportion(user.Counts[i], nPos)}
		for j, d := range dists {
			values = append(values, proportion(refBins[j].Counts[i], d.Total))
		}
		if _, err := bw.w.WriteString(strings.Join(values, "\t") + "\n"); err != nil {
			return fmt.Errorf("write bin %s: %w", label, err)
		}
	}
	return nil
}

func proportion(count, total int) string {
	if total == 0 {
		return "0"
	}
	return strconv.FormatFloat(float64(count)/float64(total), 'g', 6, 64)
}

// Flush flushes any buffered data to the underlying writer.
func (bw *BinsWriter) Flush() error {
	return bw.w.Flush()
}
