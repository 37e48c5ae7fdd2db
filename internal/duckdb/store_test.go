package duckdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covarr-net/smdp/internal/reference"
)

const testdataDir = "../reference/testdata"

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
}

func TestWriteAndReadDistribution(t *testing.T) {
	s := openInMemory(t)

	d := &reference.Distribution{
		Name:      reference.Chronic,
		Positions: []int{23012, 897, 23012, 23012},
		Total:     4,
	}
	require.NoError(t, s.WriteDistribution(d))

	got, err := s.Distribution(reference.Chronic)
	require.NoError(t, err)
	assert.Equal(t, []int{897, 23012, 23012, 23012}, got.Positions)
	assert.Equal(t, 4, got.Total)

	// rewriting replaces, not appends
	require.NoError(t, s.WriteDistribution(d))
	got, err = s.Distribution(reference.Chronic)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Total)
}

func TestDistributionMissing(t *testing.T) {
	s := openInMemory(t)
	_, err := s.Distribution(reference.Deer)
	assert.Error(t, err)
}

func TestImportTSVMatchesLoader(t *testing.T) {
	s := openInMemory(t)
	path := filepath.Join(testdataDir, reference.DefaultFiles[reference.Deer])

	require.NoError(t, s.ImportTSV(reference.Deer, path))

	want, err := reference.LoadDistribution(reference.Deer, path)
	require.NoError(t, err)
	got, err := s.Distribution(reference.Deer)
	require.NoError(t, err)

	assert.Equal(t, want.Total, got.Total)
	assert.ElementsMatch(t, want.Positions, got.Positions)
}

func TestLoadSet(t *testing.T) {
	s := openInMemory(t)
	for _, name := range reference.Names {
		path := filepath.Join(testdataDir, reference.DefaultFiles[name])
		require.NoError(t, s.ImportTSV(name, path))
	}

	names, err := s.Names()
	require.NoError(t, err)
	assert.Len(t, names, 4)

	static, err := reference.LoadStatic()
	require.NoError(t, err)
	set, err := s.LoadSet(static)
	require.NoError(t, err)
	require.Len(t, set.Distributions, 4)

	deer, ok := set.Get(reference.Deer)
	require.True(t, ok)
	assert.False(t, deer.Mask.Empty())
}

func TestLoadSet_Incomplete(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.ImportTSV(reference.Chronic, filepath.Join(testdataDir, "chronicnucl.tsv")))

	_, err := s.LoadSet(reference.Static{})
	assert.Error(t, err)
}

func TestSources(t *testing.T) {
	s := openInMemory(t)
	path := filepath.Join(testdataDir, "chronicnucl.tsv")

	fp, err := StatFile(path)
	require.NoError(t, err)
	require.NoError(t, s.RecordSource(reference.Chronic, fp))
	require.NoError(t, s.RecordSource(reference.Chronic, fp))

	srcs, err := s.Sources()
	require.NoError(t, err)
	require.Len(t, srcs, 1)
	assert.Equal(t, path, srcs[0].Path)
	assert.Equal(t, fp.Size, srcs[0].Size)
}

func TestStatFile_Missing(t *testing.T) {
	_, err := StatFile(filepath.Join(os.TempDir(), "does-not-exist.tsv"))
	assert.Error(t, err)
}

func TestOpen_OnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "reference.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpenReadOnly_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo", "refs.duckdb")
	_, err := OpenReadOnly(path)
	require.Error(t, err)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Dir(path))
	assert.True(t, os.IsNotExist(err))
}

func TestOpenReadOnly_LoadSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	for _, name := range reference.Names {
		require.NoError(t, s.ImportTSV(name, filepath.Join(testdataDir, reference.DefaultFiles[name])))
	}
	require.NoError(t, s.Close())

	ro, err := OpenReadOnly(path)
	require.NoError(t, err)
	defer ro.Close()

	set, err := ro.LoadSet(reference.Static{})
	require.NoError(t, err)
	assert.Len(t, set.Distributions, len(reference.Names))

	_, err = ro.DB().Exec(`DELETE FROM distributions`)
	assert.Error(t, err)
}
