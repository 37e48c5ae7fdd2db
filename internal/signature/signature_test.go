package signature

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covarr-net/smdp/internal/genome"
	"github.com/covarr-net/smdp/internal/mutation"
)

func TestClassifyTransitions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  TiTv
	}{
		{"empty", "", TiTv{0, 1}},
		{"transversion C>A", "C897A", TiTv{0, 1}},
		{"transition C>T", "C897T", TiTv{1, 1}},
		{"all transitions", "A1G, G2A, C3T, T4C", TiTv{4, 1}},
		{"all transversions", "A1C, A2T, G3C, G4T, C5A, T6G", TiTv{0, 6}},
		{"indels and bare positions ignored", "INS21608, DEL23009, 897, C100", TiTv{0, 1}},
		{"uracil converted", "C10U", TiTv{1, 1}},
		{"identity pair ignored", "A10A", TiTv{0, 1}},
		{"mixed", "C897A, G3431T, A7842G, C8293T, ins21608", TiTv{2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClassifyTransitions(mutation.Split(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyTransitions_Malformed(t *testing.T) {
	_, err := ClassifyTransitions(mutation.Split("897, abc123xyz"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, mutation.ErrMalformed))
}

func TestTiTv_Ratio(t *testing.T) {
	assert.Equal(t, 2.5, TiTv{Transitions: 5, Transversions: 2}.Ratio())
}

func testPanel() Panel {
	return Panel{
		Confirmed: genome.NewSiteSet(18155, 18218, 18647),
		Potential: genome.NewSiteSet(18307, 18308, 18309),
	}
}

func TestClassifyMutatorSites(t *testing.T) {
	got := ClassifyMutatorSites(mutation.Split("C18647T, A18308G, G100A"), testPanel())
	assert.Equal(t, []int{18647}, got.Confirmed)
	assert.Equal(t, []int{18308}, got.Potential)
	assert.True(t, got.Any())
}

func TestClassifyMutatorSites_None(t *testing.T) {
	got := ClassifyMutatorSites(mutation.Split("C897A"), testPanel())
	assert.False(t, got.Any())
}

func TestParsePanel(t *testing.T) {
	input := "position,type,note\n18155,confirmed,C39F\n18307,Potential,D90\n# comment\n18647,confirmed,P203L\n"
	p, err := ParsePanel(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []int{18155, 18647}, p.Confirmed.Positions())
	assert.Equal(t, []int{18307}, p.Potential.Positions())
}

func TestParsePanel_Errors(t *testing.T) {
	for _, input := range []string{
		"",
		"position,type\nabc,confirmed\n",
		"position,type\n18155,suspected\n",
		"position,type\n18155\n",
	} {
		_, err := ParsePanel(strings.NewReader(input))
		assert.Error(t, err, input)
	}
}
