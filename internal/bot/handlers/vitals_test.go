package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/glycocare/internal/domain"
)

func TestParseVitals(t *testing.T) {
	tests := []struct {
		in   string
		want domain.VitalsSnapshot
	}{
		{"110", domain.VitalsSnapshot{Glucose: 110}},
		{"98.5 mg/dL", domain.VitalsSnapshot{Glucose: 98.5}},
		{"110 120/80", domain.VitalsSnapshot{Glucose: 110, Systolic: 120, Diastolic: 80}},
		{"110 120/80 72", domain.VitalsSnapshot{Glucose: 110, Systolic: 120, Diastolic: 80, HeartRate: 72}},
		{"140 72", domain.VitalsSnapshot{Glucose: 140, HeartRate: 72}},
		{"  130  135/85  bpm ", domain.VitalsSnapshot{Glucose: 130, Systolic: 135, Diastolic: 85}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVitals(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseVitalsRejects(t *testing.T) {
	for _, in := range []string{"", "abc", "0", "-5", "110 120/", "110 abc/80", "110 120/80 72 1", "110 72 120/80", "NaN", "Inf", "-Inf 120/80", "110 120/80 NaN", "1e400"} {
		_, err := ParseVitals(in)
		assert.Error(t, err, in)
	}
}
