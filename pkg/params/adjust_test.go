package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pslmodels/taxparams/pkg/errors"
)

func TestApplyValueClobbersLaterAnchors(t *testing.T) {
	p := newTestParams(t)

	err := p.Apply(Adjustment{
		"A": {{Year: 2021, Value: 150.0}},
	})
	require.NoError(t, err)

	// The published 2022 anchor is superseded; projection compounds from
	// the adjusted value instead.
	want := map[int]float64{
		2020: 100, 2021: 150, 2022: 225, 2023: 337.5, 2024: 506.25, 2025: 759.38,
	}
	for year, w := range want {
		v, err := p.ValueAt("A", year)
		require.NoError(t, err)
		assert.Equal(t, w, v, "A in %d", year)
	}

	def, err := p.Definition("A")
	require.NoError(t, err)
	assert.Equal(t, []ValueObject{
		{Year: 2020, Value: 100},
		{Year: 2021, Value: 150},
	}, def.Values)
}

func TestApplyFlagSwitchReprojects(t *testing.T) {
	p := newTestParams(t)

	err := p.Apply(Adjustment{
		"B-indexed": {{Year: 2022, Value: true}},
	})
	require.NoError(t, err)

	// Compounding needs the indexed flag on both sides of a transition, so
	// the first projected bump lands the year after the switch.
	want := map[int]float64{
		2020: 50, 2021: 50, 2022: 50, 2023: 75, 2024: 112.5, 2025: 168.75,
	}
	for year, w := range want {
		v, err := p.ValueAt("B", year)
		require.NoError(t, err)
		assert.Equal(t, w, v, "B in %d", year)
	}
}

func TestApplyFlagBeforeValues(t *testing.T) {
	p := newTestParams(t)

	// Both kinds in one batch: the flag lands first, then the value anchors
	// the projection under the new status.
	err := p.Apply(Adjustment{
		"B":         {{Year: 2021, Value: 80.0}},
		"B-indexed": {{Year: 2021, Value: true}},
	})
	require.NoError(t, err)

	want := map[int]float64{
		2020: 50, 2021: 80, 2022: 120, 2023: 180, 2024: 270, 2025: 405,
	}
	for year, w := range want {
		v, err := p.ValueAt("B", year)
		require.NoError(t, err)
		assert.Equal(t, w, v, "B in %d", year)
	}
}

func TestApplyValidatesBeforeMutating(t *testing.T) {
	p := newTestParams(t)

	err := p.Apply(Adjustment{
		"A":         {{Year: 2021, Value: 999.0}},
		"B-indexed": {{Year: 2021, Value: "yes"}},
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	// The valid part of the failed batch must not have been committed.
	v, err := p.ValueAt("A", 2021)
	require.NoError(t, err)
	assert.Equal(t, 150.0, v)
}

func TestApplyRejectsOutOfRangeYears(t *testing.T) {
	p := newTestParams(t)

	err := p.Apply(Adjustment{"A": {{Year: 2030, Value: 1.0}}})
	require.Error(t, err)
	assert.True(t, errors.IsOutOfRange(err))

	err = p.Apply(Adjustment{"A-indexed": {{Year: 2019, Value: false}}})
	require.Error(t, err)
	assert.True(t, errors.IsOutOfRange(err))
}

func TestApplyStrictness(t *testing.T) {
	p := newTestParams(t)

	err := p.Apply(Adjustment{"Bogus": {{Year: 2021, Value: 1.0}}})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	err = p.Apply(Adjustment{"Bogus": {{Year: 2021, Value: 1.0}}}, WithStrictValidation(false))
	require.NoError(t, err)

	err = p.Apply(Adjustment{"Bogus-indexed": {{Year: 2021, Value: true}}}, WithStrictValidation(false))
	require.NoError(t, err)
}

func TestApplyRejectsFlagOnNonIndexable(t *testing.T) {
	p := newTestParams(t)

	err := p.Apply(Adjustment{"C-indexed": {{Year: 2021, Value: true}}})
	require.Error(t, err)
	assert.ErrorContains(t, err, "not indexable")
}

func TestApplyDuplicateYearLastWins(t *testing.T) {
	p := newTestParams(t)

	err := p.Apply(Adjustment{
		"A": {
			{Year: 2021, Value: 999.0},
			{Year: 2021, Value: 111.0},
		},
	})
	require.NoError(t, err)

	v, err := p.ValueAt("A", 2021)
	require.NoError(t, err)
	assert.Equal(t, 111.0, v)
}

// selectiveRater fails rate lookups for the listed parameters only.
type selectiveRater struct {
	rate float64
	fail map[string]bool
}

func (r selectiveRater) IndexRate(param string, year int) (float64, error) {
	if r.fail[param] {
		return 0, errors.NewMissingRateError(param, year)
	}
	return r.rate, nil
}

func TestApplyRollsBackOnExtendError(t *testing.T) {
	p, err := loadFrom(t, testPolicy)
	require.NoError(t, err)
	p.SetIndexRater(selectiveRater{rate: 0.5, fail: map[string]bool{"B": true}})
	require.NoError(t, p.ExtendAll())

	// Switching B on needs a rate the rater cannot supply, so the batch
	// fails during re-projection, after validation has already passed.
	err = p.Apply(Adjustment{
		"A":         {{Year: 2021, Value: 999.0}},
		"B-indexed": {{Year: 2022, Value: true}},
	})
	require.Error(t, err)
	assert.True(t, errors.IsMissingRate(err))

	// Nothing from the failed batch may remain committed.
	indexed, err := p.IndexedAt("B", 2023)
	require.NoError(t, err)
	assert.False(t, indexed)

	for year := 2020; year <= 2025; year++ {
		v, err := p.ValueAt("B", year)
		require.NoError(t, err)
		assert.Equal(t, 50.0, v, "B in %d", year)
	}

	v, err := p.ValueAt("A", 2021)
	require.NoError(t, err)
	assert.Equal(t, 150.0, v)

	def, err := p.Definition("A")
	require.NoError(t, err)
	assert.Equal(t, []ValueObject{
		{Year: 2020, Value: 100},
		{Year: 2022, Value: 200},
	}, def.Values)
}

func TestApplyEmptyAdjustment(t *testing.T) {
	p := newTestParams(t)
	require.NoError(t, p.Apply(Adjustment{}))
	require.NoError(t, p.Apply(nil))
}
