package utils

import (
	"math"
	"strconv"
	"strings"
)

// RoundTo rounds value half away from zero to the given number of decimal places.
func RoundTo(value float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(value*pow) / pow
}

// ParseFloatLoose parses a number that may carry surrounding spaces or a
// trailing unit ("120 mg/dL"). Only the leading numeric token is used, and it
// must be finite.
func ParseFloatLoose(s string) (float64, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return 0, strconv.ErrSyntax
	}
	v, err := strconv.ParseFloat(strings.Replace(fields[0], ",", ".", 1), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}

// ParseIntLoose is ParseFloatLoose truncated to an int.
func ParseIntLoose(s string) (int, error) {
	f, err := ParseFloatLoose(s)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
