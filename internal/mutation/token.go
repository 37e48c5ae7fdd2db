// Package mutation parses free-text lists of lineage-defining nucleotide
// mutations into validated tokens and genome positions.
package mutation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/covarr-net/smdp/internal/genome"
)

// ErrMalformed matches any token that fails the mutation grammar.
var ErrMalformed = errors.New("malformed mutation list")

// ParseError reports the first token that failed validation.
type ParseError struct {
	Token string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed mutation token %q", e.Token)
}

// Is lets errors.Is(err, ErrMalformed) match a *ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformed
}

// tokenPattern accepts an optional indel marker, an optional reference base,
// a 1-5 digit position and an optional alternate base. The trailing marker is
// only allowed when there is no leading one.
var tokenPattern = regexp.MustCompile(
	`^(?:(?:INDEL|INS|DEL)[ACGT]?[0-9]{1,5}[ACGT]?|[ACGT]?[0-9]{1,5}[ACGT]?(?:INDEL|INS|DEL)?)$`)

// Normalize trims surrounding whitespace, upper-cases the token and converts
// RNA uracil to thymine.
func Normalize(token string) string {
	t := strings.TrimSpace(token)
	t = strings.ToUpper(t)
	return strings.ReplaceAll(t, "U", "T")
}

// Valid reports whether a normalized token matches the mutation grammar.
func Valid(token string) bool {
	return tokenPattern.MatchString(token)
}

// TokenSet is a deduplicated, sorted list of normalized tokens.
type TokenSet []string

// Split breaks raw comma-separated input into a TokenSet. Empty tokens are
// dropped. No validation is performed.
func Split(raw string) TokenSet {
	seen := make(map[string]bool)
	var out TokenSet
	for _, part := range strings.Split(raw, ",") {
		tok := Normalize(part)
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// Validate checks every token against the grammar and returns a *ParseError
// for the first one that does not match.
func (ts TokenSet) Validate() error {
	for _, tok := range ts {
		if !Valid(tok) {
			return &ParseError{Token: tok}
		}
	}
	return nil
}

// ParseTokens splits and validates raw input.
func ParseTokens(raw string) (TokenSet, error) {
	ts := Split(raw)
	if err := ts.Validate(); err != nil {
		return nil, err
	}
	return ts, nil
}

// PositionSet is a sorted list of distinct genome positions.
type PositionSet []int

// ExtractPositions strips the non-digit characters from every token and
// parses the rest as a genome position. Positions outside the genome are
// dropped. If any token carries no digits at all, the whole batch is
// unusable and an empty set is returned with ok=false.
func ExtractPositions(tokens TokenSet) (PositionSet, bool) {
	seen := make(map[int]bool, len(tokens))
	out := make(PositionSet, 0, len(tokens))
	for _, tok := range tokens {
		digits := strings.Map(func(r rune) rune {
			if unicode.IsDigit(r) {
				return r
			}
			return -1
		}, tok)
		pos, err := strconv.Atoi(digits)
		if err != nil {
			return PositionSet{}, false
		}
		if !genome.InRange(pos) || seen[pos] {
			continue
		}
		seen[pos] = true
		out = append(out, pos)
	}
	sort.Ints(out)
	return out, true
}
