package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairdistricts/mapmetrics/internal/model"
)

func TestStatic_Lookup(t *testing.T) {
	p := Static()

	s, ok := p.Lookup("CA")
	require.True(t, ok)
	assert.Equal(t, model.ClassFavorsDem, s.Classification)
	assert.Equal(t, 42, s.Summary.ExpectedSeats.Dem)

	_, ok = p.Lookup("WY")
	assert.False(t, ok)
}

func TestStatic_LookupReturnsCopy(t *testing.T) {
	p := Static()
	s, ok := p.Lookup("TX")
	require.True(t, ok)
	s.Classification = model.ClassFair

	again, ok := p.Lookup("TX")
	require.True(t, ok)
	assert.Equal(t, model.ClassFavorsRep, again.Classification)
}

func TestFromYAML(t *testing.T) {
	body := `
MT:
  classification: fair
  summary:
    pop_variance_pct: {min: -0.5, max: 0.5, mean: 0.0}
    compactness: {mean_polsby_popper: 0.41}
    expected_seats: {dem: 1, rep: 1}
    notes: ["seeded"]
`
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	p, err := FromYAML(path)
	require.NoError(t, err)

	s, ok := p.Lookup("MT")
	require.True(t, ok)
	assert.Equal(t, model.ClassFair, s.Classification)
	require.NotNil(t, s.Summary.Compactness.MeanPolsbyPopper)
	assert.InDelta(t, 0.41, *s.Summary.Compactness.MeanPolsbyPopper, 0.001)
	assert.Equal(t, model.Seats{Dem: 1, Rep: 1}, s.Summary.ExpectedSeats)
}

func TestFromYAML_MissingFile(t *testing.T) {
	_, err := FromYAML(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
