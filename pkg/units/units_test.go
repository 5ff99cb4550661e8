package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waterfutures/scadasim/pkg/types"
)

func TestFactorIdentity(t *testing.T) {
	f, err := Factor(types.LitersPerSecond, types.LitersPerSecond)
	require.NoError(t, err)
	assert.Equal(t, 1.0, f)
}

func TestFactorFlow(t *testing.T) {
	f, err := Factor(types.LitersPerSecond, types.CubicMetersPerHour)
	require.NoError(t, err)
	assert.InDelta(t, 3.6, f, 1e-12)

	// Round trip multiplies out to 1.
	back, err := Factor(types.CubicMetersPerHour, types.LitersPerSecond)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, f*back, 1e-12)
}

func TestFactorQuality(t *testing.T) {
	f, err := Factor(types.MilligramsPerLiter, types.MicrogramsPerLiter)
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, f, 1e-9)
}

func TestFactorDimensionMismatch(t *testing.T) {
	_, err := Factor(types.LitersPerSecond, types.MilligramsPerLiter)
	assert.Error(t, err)
}

func TestFactorMolesRejected(t *testing.T) {
	_, err := Factor(types.MolesPerLiter, types.MilligramsPerLiter)
	assert.Error(t, err)

	_, err = Factor(types.Milligrams, types.Moles)
	assert.Error(t, err)
}
