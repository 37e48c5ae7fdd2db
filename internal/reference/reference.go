// Package reference loads the reference mutation distributions and the
// static gene, mask and mutator-site tables they are compared with.
package reference

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/covarr-net/smdp/internal/binning"
	"github.com/covarr-net/smdp/internal/genome"
)

// Reference distribution names.
const (
	GlobalPreVoC  = "global_preVoC"
	GlobalOmicron = "global_Omicron"
	Chronic       = "chronic"
	Deer          = "deer"
)

// Names lists the distributions in display order.
var Names = []string{GlobalPreVoC, GlobalOmicron, Chronic, Deer}

// DefaultFiles maps each distribution to its TSV file name in a data directory.
var DefaultFiles = map[string]string{
	GlobalPreVoC:  "globalnucl.tsv",
	GlobalOmicron: "globallatenucl.tsv",
	Chronic:       "chronicnucl.tsv",
	Deer:          "deernucl.tsv",
}

// Distribution is a multiset of mutated positions: a position observed n
// times appears n times in Positions.
type Distribution struct {
	Name      string
	Positions []int
	Total     int
	// Mask lists positions removed from both sides before binning.
	Mask genome.SiteSet
}

// DisplayName returns the name with underscores replaced by spaces.
func (d *Distribution) DisplayName() string {
	return strings.ReplaceAll(d.Name, "_", " ")
}

// ParseDistribution reads a two-column (position, count) TSV with a header.
func ParseDistribution(name string, r io.Reader) (*Distribution, error) {
	d := &Distribution{Name: name}
	scanner := bufio.NewScanner(r)

	// Skip header line
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("scan %s distribution: %w", name, err)
		}
		return nil, fmt.Errorf("%s distribution: empty file", name)
	}

	lineNo := 1
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("%s distribution line %d: expected position and count", name, lineNo)
		}
		pos, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, fmt.Errorf("%s distribution line %d: invalid position %q", name, lineNo, fields[0])
		}
		count, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil || count < 0 {
			return nil, fmt.Errorf("%s distribution line %d: invalid count %q", name, lineNo, fields[1])
		}
		for i := 0; i < count; i++ {
			d.Positions = append(d.Positions, pos)
		}
		d.Total += count
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s distribution: %w", name, err)
	}
	return d, nil
}

// LoadDistribution reads a distribution TSV from disk.
func LoadDistribution(name, path string) (*Distribution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s distribution: %w", name, err)
	}
	defer f.Close()

	return ParseDistribution(name, f)
}

// ParseGeneTable reads a "start,gene" CSV with a header, in genome order.
func ParseGeneTable(r io.Reader) (binning.GeneTable, error) {
	var t binning.GeneTable
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		return t, fmt.Errorf("gene table: empty file")
	}

	lineNo := 1
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		start, name, ok := strings.Cut(line, ",")
		if !ok {
			return t, fmt.Errorf("gene table line %d: expected start,gene", lineNo)
		}
		pos, err := strconv.Atoi(strings.TrimSpace(start))
		if err != nil {
			return t, fmt.Errorf("gene table line %d: invalid start %q", lineNo, start)
		}
		if n := len(t.Starts); n > 0 && pos <= t.Starts[n-1] {
			return t, fmt.Errorf("gene table line %d: start %d not after %d", lineNo, pos, t.Starts[n-1])
		}
		t.Starts = append(t.Starts, pos)
		t.Names = append(t.Names, strings.TrimSpace(name))
	}
	if err := scanner.Err(); err != nil {
		return t, fmt.Errorf("scan gene table: %w", err)
	}
	return t, nil
}

// Set is the process-wide reference context: the four distributions and the
// static tables. It is built once and never modified.
type Set struct {
	Distributions []*Distribution
	Static        Static
}

// NewSet attaches the static tables to the distributions. The deer
// distribution gets the non-coding mask.
func NewSet(dists []*Distribution, static Static) *Set {
	for _, d := range dists {
		if d.Name == Deer {
			d.Mask = static.DeerMask
		}
	}
	return &Set{Distributions: dists, Static: static}
}

// Get returns a distribution by name.
func (s *Set) Get(name string) (*Distribution, bool) {
	for _, d := range s.Distributions {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// LoadDir reads every distribution in files (name -> file name) from dir,
// in Names order, and combines them with the embedded static tables.
func LoadDir(dir string, files map[string]string) (*Set, error) {
	static, err := LoadStatic()
	if err != nil {
		return nil, err
	}

	var dists []*Distribution
	for _, name := range Names {
		file, ok := files[name]
		if !ok {
			return nil, fmt.Errorf("no file configured for %s distribution", name)
		}
		d, err := LoadDistribution(name, filepath.Join(dir, file))
		if err != nil {
			return nil, err
		}
		dists = append(dists, d)
	}
	return NewSet(dists, static), nil
}
