package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covarr-net/smdp/internal/analysis"
	"github.com/covarr-net/smdp/internal/binning"
	"github.com/covarr-net/smdp/internal/reference"
)

const lineage = "C897A, G3431T, A7842G, C8293T, G8393A, G11042T, C12789T, T13339C, A18492G, C18647T, ins21608, del23009"

func newEngine(t *testing.T) *analysis.Engine {
	t.Helper()
	set, err := reference.LoadDir("../reference/testdata", reference.DefaultFiles)
	require.NoError(t, err)
	e, err := analysis.NewEngine(set, analysis.Options{})
	require.NoError(t, err)
	return e
}

func analyze(t *testing.T, e *analysis.Engine, raw string, s binning.Scheme) *analysis.Result {
	t.Helper()
	res, err := e.Analyze(raw, s)
	require.NoError(t, err)
	return res
}

func TestFormatRatio(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1, "1.00"},
		{12.345, "12.35"},
		{99999, "99999.00"},
		{123456, "1.2e+05"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRatio(tt.in))
	}
}

func TestTextWriter(t *testing.T) {
	e := newEngine(t)
	res := analyze(t, e, lineage, binning.Gene())

	var buf bytes.Buffer
	w := NewTextWriter(&buf)
	require.NoError(t, w.Write(res))
	require.NoError(t, w.Flush())

	out := buf.String()
	assert.Contains(t, out, "Number of mutations: 12")
	assert.Contains(t, out, "Transition/Transversion ratio:")
	assert.Contains(t, out, "Log Likelihoods (bin size gene):")
	assert.Contains(t, out, "global preVoC:")
	assert.Contains(t, out, "Best fit distribution: "+strings.ReplaceAll(res.BestFit, "_", " "))
	assert.Contains(t, out, "times more likely than the")
	assert.Contains(t, out, "Confirmed: 18647")
}

func TestTextWriter_NoMutator(t *testing.T) {
	e := newEngine(t)
	res := analyze(t, e, "C897A, G3431T", binning.FixedWidth(1000))

	var buf bytes.Buffer
	w := NewTextWriter(&buf)
	require.NoError(t, w.Write(res))
	require.NoError(t, w.Flush())
	assert.Contains(t, buf.String(), "No mutator lineage detected")
}

func TestTextWriter_Messages(t *testing.T) {
	e := newEngine(t)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"malformed", "C897A, hello", MsgMalformed},
		{"empty", "", MsgAwaitingInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewTextWriter(&buf)
			require.NoError(t, w.Write(analyze(t, e, tt.raw, binning.Gene())))
			require.NoError(t, w.Flush())
			assert.Contains(t, buf.String(), tt.want)
			assert.NotContains(t, buf.String(), "Best fit distribution")
		})
	}
}

func TestJSONWriter(t *testing.T) {
	e := newEngine(t)
	res := analyze(t, e, lineage, binning.FixedWidth(500))

	var buf bytes.Buffer
	w := NewJSONWriter(&buf)
	require.NoError(t, w.Write(res))
	require.NoError(t, w.Flush())

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "ok", got["status"])
	assert.Equal(t, "500", got["bin_size"])
	assert.Equal(t, float64(12), got["mutations_count"])
	assert.Equal(t, res.BestFit, got["best_fit"])
	assert.Len(t, got["likelihoods"], 4)
	assert.NotContains(t, got, "Positions")
}

func TestBinsWriter(t *testing.T) {
	e := newEngine(t)
	res := analyze(t, e, "897,3431,7842", binning.FixedWidth(1000))

	var buf bytes.Buffer
	w := NewBinsWriter(&buf, e)
	require.NoError(t, w.Write(res))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 31)
	assert.Equal(t, "bin\tinput\tglobal_preVoC\tglobal_Omicron\tchronic\tdeer", lines[0])

	first := strings.Split(lines[1], "\t")
	require.Len(t, first, 6)
	assert.Equal(t, "501", first[0])
	assert.Equal(t, "0.333333", first[1])

	second := strings.Split(lines[2], "\t")
	assert.Equal(t, "0", second[1])
}

func TestBinsWriter_EmptyInput(t *testing.T) {
	e := newEngine(t)
	res := analyze(t, e, "", binning.Gene())

	var buf bytes.Buffer
	w := NewBinsWriter(&buf, e)
	require.NoError(t, w.Write(res))
	require.NoError(t, w.Flush())

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n")[1:] {
		assert.Equal(t, "0", strings.Split(line, "\t")[1])
	}
}

func TestBatchWriter(t *testing.T) {
	e := newEngine(t)
	names := make([]string, 0, 4)
	for _, d := range e.Distributions() {
		names = append(names, d.Name)
	}

	var buf bytes.Buffer
	w := NewBatchWriter(&buf, names)
	require.NoError(t, w.WriteHeader())
	ok := analyze(t, e, lineage, binning.Gene())
	require.NoError(t, w.Write("BA.2.86", ok))
	require.NoError(t, w.Write("bad", analyze(t, e, "xyz", binning.Gene())))
	require.NoError(t, w.Write("empty", analyze(t, e, "", binning.Gene())))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "Lineage"))
	assert.Contains(t, lines[1], ok.BestFit)
	assert.Contains(t, lines[1], "18647")
	assert.Contains(t, lines[2], "malformed")
	assert.Contains(t, lines[3], "awaiting_input")

	var summary bytes.Buffer
	w.WriteSummary(&summary)
	s := summary.String()
	assert.Contains(t, s, "Total lineages: 3")
	assert.Contains(t, s, "Malformed:      1")
	assert.Contains(t, s, "No mutations:   1")
	assert.Contains(t, s, "Best fit")
}

func TestJSONWriter_MalformedHasNoBestFit(t *testing.T) {
	e := newEngine(t)
	res := analyze(t, e, "897, abc123xyz", binning.FixedWidth(500))

	var buf bytes.Buffer
	w := NewJSONWriter(&buf)
	require.NoError(t, w.Write(res))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "malformed", got["status"])
	assert.NotContains(t, got, "best_fit")
	cmp, ok := got["comparison"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, cmp["needs_input"])
	assert.Equal(t, float64(0), cmp["ratio"])
}
