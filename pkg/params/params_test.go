package params

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pslmodels/taxparams/pkg/errors"
)

const testPolicy = `
schema:
  start_year: 2020
  end_year: 2025
parameters:
  A:
    title: Indexed parameter
    indexable: true
    indexed: true
    values:
      - { year: 2020, value: 100 }
      - { year: 2022, value: 200 }
  B:
    title: Indexable but unindexed parameter
    indexable: true
    indexed: false
    values:
      - { year: 2020, value: 50 }
  C:
    title: Plain rate parameter
    indexable: false
    values:
      - { year: 2020, value: 1.5 }
`

// fixedRater returns the same rate for every parameter and year. The rate is
// a binary fraction so projected values stay exact.
type fixedRater struct {
	rate float64
}

func (r fixedRater) IndexRate(string, int) (float64, error) {
	return r.rate, nil
}

func loadFrom(t *testing.T, policy string) (*Parameters, error) {
	t.Helper()
	fsys := fstest.MapFS{"policy.yaml": &fstest.MapFile{Data: []byte(policy)}}
	return Load(WithFS(fsys))
}

func newTestParams(t *testing.T) *Parameters {
	t.Helper()
	p, err := loadFrom(t, testPolicy)
	require.NoError(t, err)
	p.SetIndexRater(fixedRater{rate: 0.5})
	require.NoError(t, p.ExtendAll())
	return p
}

func TestLoadEmbeddedDefaults(t *testing.T) {
	p, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2013, p.StartYear())
	assert.Equal(t, 2029, p.EndYear())
	assert.True(t, p.Has("CPI_offset"))
	assert.True(t, p.Has("EITC_c"))

	def, err := p.Definition("EITC_c")
	require.NoError(t, err)
	assert.True(t, def.Indexable)
	assert.True(t, def.IndexedAt(2013))
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		policy  string
		wantMsg string
	}{
		{
			name: "first value after start year",
			policy: `
schema: { start_year: 2020, end_year: 2025 }
parameters:
  A:
    indexable: true
    values:
      - { year: 2021, value: 1 }
`,
			wantMsg: "first value must be for the start year",
		},
		{
			name: "value years not increasing",
			policy: `
schema: { start_year: 2020, end_year: 2025 }
parameters:
  A:
    indexable: true
    values:
      - { year: 2020, value: 1 }
      - { year: 2022, value: 2 }
      - { year: 2022, value: 3 }
`,
			wantMsg: "strictly increasing",
		},
		{
			name: "value year beyond end year",
			policy: `
schema: { start_year: 2020, end_year: 2025 }
parameters:
  A:
    indexable: true
    values:
      - { year: 2020, value: 1 }
      - { year: 2030, value: 2 }
`,
			wantMsg: "outside valid range",
		},
		{
			name: "indexed flag on non-indexable parameter",
			policy: `
schema: { start_year: 2020, end_year: 2025 }
parameters:
  A:
    indexable: false
    indexed: true
    values:
      - { year: 2020, value: 1 }
`,
			wantMsg: "indexed status on a non-indexable parameter",
		},
		{
			name: "no values",
			policy: `
schema: { start_year: 2020, end_year: 2025 }
parameters:
  A:
    indexable: true
    values: []
`,
			wantMsg: "no values",
		},
		{
			name: "end year before start year",
			policy: `
schema: { start_year: 2025, end_year: 2020 }
parameters: {}
`,
			wantMsg: "invalid year range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadFrom(t, tt.policy)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantMsg)
		})
	}
}

func TestDefinitionIndexedAt(t *testing.T) {
	def := &Definition{
		Name: "A",
		Indexed: []IndexedStatus{
			{Year: 2020, Indexed: true},
			{Year: 2022, Indexed: false},
			{Year: 2024, Indexed: true},
		},
	}

	assert.False(t, def.IndexedAt(2019))
	assert.True(t, def.IndexedAt(2020))
	assert.True(t, def.IndexedAt(2021))
	assert.False(t, def.IndexedAt(2022))
	assert.False(t, def.IndexedAt(2023))
	assert.True(t, def.IndexedAt(2024))
	assert.True(t, def.IndexedAt(2030))
}

func TestDefinitionAnchor(t *testing.T) {
	def := &Definition{
		Name: "A",
		Values: []ValueObject{
			{Year: 2020, Value: 100},
			{Year: 2022, Value: 200},
		},
	}

	v, ok := def.Anchor(2020)
	assert.True(t, ok)
	assert.Equal(t, 100.0, v)

	_, ok = def.Anchor(2021)
	assert.False(t, ok)

	v, ok = def.Anchor(2022)
	assert.True(t, ok)
	assert.Equal(t, 200.0, v)
}

func TestExtendCompoundsBetweenAnchors(t *testing.T) {
	p := newTestParams(t)

	// Anchors hold; gap years compound at the fixed 0.5 rate.
	want := map[int]float64{
		2020: 100, 2021: 150, 2022: 200, 2023: 300, 2024: 450, 2025: 675,
	}
	for year, w := range want {
		v, err := p.ValueAt("A", year)
		require.NoError(t, err)
		assert.Equal(t, w, v, "A in %d", year)
	}

	// An unindexed parameter holds its last anchor.
	for year := 2020; year <= 2025; year++ {
		v, err := p.ValueAt("B", year)
		require.NoError(t, err)
		assert.Equal(t, 50.0, v, "B in %d", year)
	}
}

func TestExtendRequiresRater(t *testing.T) {
	p, err := loadFrom(t, testPolicy)
	require.NoError(t, err)

	_, err = p.ValueAt("A", 2021)
	require.Error(t, err)
	assert.ErrorContains(t, err, "no index rater configured")

	// Parameters with no projected transitions resolve without one.
	v, err := p.ValueAt("B", 2021)
	require.NoError(t, err)
	assert.Equal(t, 50.0, v)
}

func TestValueAtRange(t *testing.T) {
	p := newTestParams(t)

	_, err := p.ValueAt("A", 2019)
	require.Error(t, err)
	assert.True(t, errors.IsOutOfRange(err))

	_, err = p.ValueAt("A", 2026)
	require.Error(t, err)
	assert.True(t, errors.IsOutOfRange(err))

	_, err = p.ValueAt("missing", 2021)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestValuesCoverTheFullRange(t *testing.T) {
	p := newTestParams(t)

	vos, err := p.Values("C")
	require.NoError(t, err)
	require.Len(t, vos, 6)
	for i, vo := range vos {
		assert.Equal(t, 2020+i, vo.Year)
		assert.Equal(t, 1.5, vo.Value)
	}
}
