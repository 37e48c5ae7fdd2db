// Package nextclade derives lineage-defining (private) mutations from a
// consensus sequence by running the Nextclade CLI.
package nextclade

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"go.uber.org/zap"
)

// ErrNotSingleRecord is returned when the FASTA input does not hold exactly
// one consensus sequence.
var ErrNotSingleRecord = errors.New("FASTA input must contain exactly one sequence")

// privateColumns are joined, in order, into the mutation list.
var privateColumns = []string{
	"privateNucMutations.reversionSubstitutions",
	"privateNucMutations.labeledSubstitutions",
	"privateNucMutations.unlabeledSubstitutions",
}

// CountRecords returns the number of FASTA records in path.
func CountRecords(path string) (int, error) {
	reader, err := fastx.NewReader(seq.DNAredundant, path, "")
	if err != nil {
		return 0, fmt.Errorf("open FASTA: %w", err)
	}
	defer reader.Close()

	n := 0
	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, fmt.Errorf("read FASTA: %w", err)
		}
		n++
	}
	return n, nil
}

// Runner invokes the Nextclade CLI.
type Runner struct {
	Binary  string // path to the nextclade executable
	Dataset string // --input-dataset directory
	logger  *zap.Logger
}

// NewRunner creates a runner for the given executable and dataset.
func NewRunner(binary, dataset string) *Runner {
	if binary == "" {
		binary = "nextclade"
	}
	return &Runner{Binary: binary, Dataset: dataset, logger: zap.NewNop()}
}

// SetLogger sets the logger for command output.
func (r *Runner) SetLogger(l *zap.Logger) {
	r.logger = l
}

// PrivateMutations aligns a single-sequence FASTA and returns its private
// nucleotide substitutions as a comma-separated list.
func (r *Runner) PrivateMutations(ctx context.Context, fastaPath string) (string, error) {
	n, err := CountRecords(fastaPath)
	if err != nil {
		return "", err
	}
	if n != 1 {
		return "", fmt.Errorf("%w (found %d)", ErrNotSingleRecord, n)
	}

	tmp, err := os.MkdirTemp("", "smdp-nextclade-")
	if err != nil {
		return "", fmt.Errorf("create work directory: %w", err)
	}
	defer os.RemoveAll(tmp)

	outPath := filepath.Join(tmp, "nextclade.tsv")
	args := []string{"run", "--output-tsv", outPath}
	if r.Dataset != "" {
		args = append(args, "--input-dataset", r.Dataset)
	}
	args = append(args, fastaPath)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Stderr = &stderr
	r.logger.Debug("running nextclade", zap.String("binary", r.Binary), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("nextclade run: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	f, err := os.Open(outPath)
	if err != nil {
		return "", fmt.Errorf("open nextclade output: %w", err)
	}
	defer f.Close()

	return ParsePrivateMutations(f)
}

// ParsePrivateMutations reads the first result row of a Nextclade TSV and
// joins its reversion, labeled and unlabeled private substitutions. Labels
// ("C123T|BA.2") are dropped.
func ParsePrivateMutations(r io.Reader) (string, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return "", fmt.Errorf("read nextclade header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[col] = i
	}

	row, err := cr.Read()
	if err == io.EOF {
		return "", fmt.Errorf("nextclade output has no results")
	}
	if err != nil {
		return "", fmt.Errorf("read nextclade result: %w", err)
	}

	var muts []string
	found := false
	for _, col := range privateColumns {
		i, ok := idx[col]
		if !ok {
			continue
		}
		found = true
		if i >= len(row) {
			continue
		}
		for _, m := range strings.Split(row[i], ",") {
			m, _, _ = strings.Cut(strings.TrimSpace(m), "|")
			if m != "" {
				muts = append(muts, m)
			}
		}
	}
	if !found {
		return "", fmt.Errorf("nextclade output lacks private mutation columns")
	}
	return strings.Join(muts, ","), nil
}
