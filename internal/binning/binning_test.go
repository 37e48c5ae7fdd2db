package binning

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covarr-net/smdp/internal/genome"
)

var testTables = Tables{
	Gene: GeneTable{
		Starts: []int{266, 21563, 25393, 29558, 29675},
		Names:  []string{"ORF1ab", "S", "ORF3a-N", "ORF10", "n/a"},
	},
	GenesSplit: GeneTable{
		Starts: []int{266, 21563, 22517, 23186, 25393, 29675},
		Names:  []string{"ORF1ab", "S_NTD", "S_RBD", "S_postRBD", "ORF3a-ORF10", "n/a"},
	},
}

func mustLayout(t *testing.T, s Scheme) *Layout {
	t.Helper()
	l, err := NewLayout(s, testTables)
	require.NoError(t, err)
	return l
}

func TestParseScheme(t *testing.T) {
	for _, name := range SupportedSchemes {
		s, err := ParseScheme(name)
		require.NoError(t, err)
		assert.Equal(t, name, s.String())
	}

	_, err := ParseScheme("750")
	assert.Error(t, err)
	_, err = ParseScheme("genes")
	assert.Error(t, err)
}

func TestScheme_Width(t *testing.T) {
	assert.Equal(t, 500, FixedWidth(500).Width())
	assert.Equal(t, 0, Gene().Width())
	assert.Equal(t, KindGenesSplit, GenesSplit().Kind())
}

func TestFixedLayout_BinCounts(t *testing.T) {
	assert.Equal(t, 30, mustLayout(t, FixedWidth(1000)).Len())
	assert.Equal(t, 60, mustLayout(t, FixedWidth(500)).Len())
}

func TestFixedLayout_Centers(t *testing.T) {
	l := mustLayout(t, FixedWidth(1000))
	b := l.Bin(nil, genome.SiteSet{})
	require.Len(t, b.Centers, 30)
	assert.Equal(t, 501.0, b.Centers[0])
	assert.Equal(t, "501", b.Labels[0])
	assert.Equal(t, 29501.0, b.Centers[29])
	assert.Len(t, b.Labels, len(b.Counts))
}

func TestFixedLayout_ScenarioA(t *testing.T) {
	l := mustLayout(t, FixedWidth(1000))
	counts := l.Count([]int{897, 3431, 7842}, genome.SiteSet{})

	require.Len(t, counts, 30)
	want := make([]int, 30)
	want[0], want[3], want[7] = 1, 1, 1
	assert.Equal(t, want, counts)
}

func TestFixedLayout_RightOpenEdges(t *testing.T) {
	l := mustLayout(t, FixedWidth(1000))
	counts := l.Count([]int{1, 1000, 1001, 30000}, genome.SiteSet{})
	assert.Equal(t, 2, counts[0])
	assert.Equal(t, 1, counts[1])
	assert.Equal(t, 1, counts[29])
}

func TestGeneLayout_Labels(t *testing.T) {
	l := mustLayout(t, Gene())
	assert.Equal(t, 4, l.Len())
	assert.Equal(t, []string{"ORF1ab", "S", "ORF3a-N", "ORF10"}, l.Labels())

	b := l.Bin(nil, genome.SiteSet{})
	assert.Nil(t, b.Centers)
	assert.Len(t, b.Labels, len(b.Counts))
}

func TestGeneLayout_ExcludesLeader(t *testing.T) {
	l := mustLayout(t, Gene())
	counts := l.Count([]int{100, 265, 266, 21562, 21563, 29674, 29675}, genome.SiteSet{})
	assert.Equal(t, []int{2, 1, 0, 1}, counts)
}

func TestGenesSplitLayout(t *testing.T) {
	l := mustLayout(t, GenesSplit())
	counts := l.Count([]int{21600, 22600, 23500, 23501}, genome.SiteSet{})
	assert.Equal(t, []int{0, 1, 1, 2, 0}, counts)
}

func TestCount_Mask(t *testing.T) {
	l := mustLayout(t, FixedWidth(1000))
	mask := genome.NewSiteSet(897)
	counts := l.Count([]int{897, 3431}, mask)
	assert.Equal(t, 0, counts[0])
	assert.Equal(t, 1, counts[3])
}

func TestCount_Multiset(t *testing.T) {
	l := mustLayout(t, Gene())
	counts := l.Count([]int{300, 300, 300, 21600}, genome.SiteSet{})
	assert.Equal(t, []int{3, 1, 0, 0}, counts)
}

func TestCount_EmptyIsAllZero(t *testing.T) {
	for _, s := range AllSchemes() {
		l := mustLayout(t, s)
		counts := l.Count(nil, genome.SiteSet{})
		assert.Len(t, counts, l.Len())
		for _, c := range counts {
			assert.Zero(t, c)
		}
	}
}

func TestCount_OrderIndependentAndConserving(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	positions := make([]int, 200)
	for i := range positions {
		positions[i] = 300 + rng.Intn(29000)
	}
	mask := genome.NewSiteSet(positions[0], positions[1])

	for _, s := range AllSchemes() {
		t.Run(s.String(), func(t *testing.T) {
			l := mustLayout(t, s)
			want := l.Count(positions, mask)

			shuffled := append([]int(nil), positions...)
			rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
			assert.Equal(t, want, l.Count(shuffled, mask))

			kept := 0
			for _, p := range mask.Filter(positions) {
				if s.Kind() == KindFixedWidth || p < testTables.Gene.Starts[len(testTables.Gene.Starts)-1] {
					kept++
				}
			}
			assert.Equal(t, kept, Binned{Counts: want}.Total())
		})
	}
}

func TestNewLayout_Invalid(t *testing.T) {
	_, err := NewLayout(FixedWidth(0), testTables)
	assert.Error(t, err)

	_, err = NewLayout(Gene(), Tables{})
	assert.Error(t, err)

	bad := Tables{Gene: GeneTable{Starts: []int{500, 266}, Names: []string{"a", "b"}}}
	_, err = NewLayout(Gene(), bad)
	assert.Error(t, err)

	mismatched := Tables{Gene: GeneTable{Starts: []int{266, 500}, Names: []string{"a"}}}
	_, err = NewLayout(Gene(), mismatched)
	assert.Error(t, err)
}
