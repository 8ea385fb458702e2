package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 22.5, RoundTo(22.5, 1))
	assert.Equal(t, 33.8, RoundTo(33.75, 1))
	assert.Equal(t, 250.0, RoundTo(249.5, 0))
	assert.Equal(t, 0.33, RoundTo(0.3333, 2))
}

func TestParseFloatLoose(t *testing.T) {
	v, err := ParseFloatLoose(" 120 mg/dL")
	require.NoError(t, err)
	assert.Equal(t, 120.0, v)

	v, err = ParseFloatLoose("5,6")
	require.NoError(t, err)
	assert.Equal(t, 5.6, v)

	_, err = ParseFloatLoose("   ")
	assert.Error(t, err)

	_, err = ParseFloatLoose("abc")
	assert.Error(t, err)

	for _, in := range []string{"NaN", "nan", "Inf", "-Inf", "+infinity", "1e400"} {
		_, err = ParseFloatLoose(in)
		assert.Error(t, err, in)
	}
}

func TestParseIntLoose(t *testing.T) {
	v, err := ParseIntLoose("72bpm")
	assert.Error(t, err)

	v, err = ParseIntLoose("72 bpm")
	require.NoError(t, err)
	assert.Equal(t, 72, v)
}
