// Package binning partitions the genome into bins and counts mutation
// positions per bin.
package binning

import (
	"fmt"
	"strconv"
)

// Kind distinguishes the bin scheme variants.
type Kind int

const (
	KindFixedWidth Kind = iota
	KindGene
	KindGenesSplit
)

// Scheme is a tagged union: FixedWidth(w) | Gene | GenesSplit.
// Build one with the constructors or ParseScheme; never infer it downstream.
type Scheme struct {
	kind  Kind
	width int
}

// FixedWidth returns a scheme of contiguous windows of w nucleotides.
func FixedWidth(w int) Scheme { return Scheme{kind: KindFixedWidth, width: w} }

// Gene returns the one-bin-per-gene scheme.
func Gene() Scheme { return Scheme{kind: KindGene} }

// GenesSplit returns the gene scheme with spike split into NTD, RBD and post-RBD.
func GenesSplit() Scheme { return Scheme{kind: KindGenesSplit} }

// Kind returns the variant tag.
func (s Scheme) Kind() Kind { return s.kind }

// Width returns the window size for fixed-width schemes and 0 otherwise.
func (s Scheme) Width() int {
	if s.kind != KindFixedWidth {
		return 0
	}
	return s.width
}

// String returns the user-facing name, as accepted by ParseScheme.
func (s Scheme) String() string {
	switch s.kind {
	case KindGene:
		return "gene"
	case KindGenesSplit:
		return "genes_split"
	default:
		return strconv.Itoa(s.width)
	}
}

// SupportedSchemes lists the scheme names accepted by ParseScheme.
var SupportedSchemes = []string{"genes_split", "gene", "500", "1000"}

// ParseScheme converts a user-supplied bin size into a Scheme.
func ParseScheme(s string) (Scheme, error) {
	switch s {
	case "gene":
		return Gene(), nil
	case "genes_split":
		return GenesSplit(), nil
	case "500":
		return FixedWidth(500), nil
	case "1000":
		return FixedWidth(1000), nil
	}
	return Scheme{}, fmt.Errorf("unknown bin size %q (expected one of %v)", s, SupportedSchemes)
}

// AllSchemes returns every supported scheme, in SupportedSchemes order.
func AllSchemes() []Scheme {
	return []Scheme{GenesSplit(), Gene(), FixedWidth(500), FixedWidth(1000)}
}
