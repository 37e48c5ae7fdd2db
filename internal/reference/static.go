package reference

import (
	"bytes"
	"embed"
	"fmt"

	"github.com/covarr-net/smdp/internal/binning"
	"github.com/covarr-net/smdp/internal/genome"
	"github.com/covarr-net/smdp/internal/signature"
)

//go:embed data/*.csv
var staticFS embed.FS

// Static holds the tables shipped with the binary.
type Static struct {
	Tables   binning.Tables
	DeerMask genome.SiteSet
	Panel    signature.Panel
}

// LoadStatic parses the embedded gene tables (NC_045512.2 coordinates), deer
// mask and mutator-site panel.
func LoadStatic() (Static, error) {
	var s Static
	var err error

	if s.Tables.Gene, err = ParseGeneTable(embedded("genes.csv")); err != nil {
		return s, fmt.Errorf("genes.csv: %w", err)
	}
	if s.Tables.GenesSplit, err = ParseGeneTable(embedded("genes_split.csv")); err != nil {
		return s, fmt.Errorf("genes_split.csv: %w", err)
	}
	if s.DeerMask, err = genome.ParseRanges(embedded("deer_mask.csv")); err != nil {
		return s, fmt.Errorf("deer_mask.csv: %w", err)
	}
	if s.Panel, err = signature.ParsePanel(embedded("mutator_sites.csv")); err != nil {
		return s, fmt.Errorf("mutator_sites.csv: %w", err)
	}
	return s, nil
}

func embedded(name string) *bytes.Reader {
	data, err := staticFS.ReadFile("data/" + name)
	if err != nil {
		// files are compiled in; a miss is a build error
		panic(err)
	}
	return bytes.NewReader(data)
}
