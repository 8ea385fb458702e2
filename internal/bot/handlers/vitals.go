package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/vladimiradmaev/glycocare/internal/domain"
	"github.com/vladimiradmaev/glycocare/internal/utils"
)

var errVitalsFormat = errors.New("expected: glucose [systolic/diastolic] [heart rate]")

// ParseVitals reads "glucose [sys/dia] [hr]", e.g. "110", "110 120/80" or
// "110 120/80 72". Units after a number are ignored.
func ParseVitals(text string) (domain.VitalsSnapshot, error) {
	var v domain.VitalsSnapshot

	fields := strings.Fields(strings.ToLower(text))
	nums := fields[:0]
	for _, f := range fields {
		if f == "mg/dl" || f == "mmhg" || f == "bpm" {
			continue
		}
		nums = append(nums, f)
	}
	if len(nums) == 0 || len(nums) > 3 {
		return v, errVitalsFormat
	}

	glucose, err := utils.ParseFloatLoose(nums[0])
	if err != nil || glucose <= 0 {
		return v, errVitalsFormat
	}
	v.Glucose = glucose

	rest := nums[1:]
	if len(rest) > 0 && strings.Contains(rest[0], "/") {
		sys, dia, _ := strings.Cut(rest[0], "/")
		if v.Systolic, err = strconv.Atoi(sys); err != nil || v.Systolic <= 0 {
			return domain.VitalsSnapshot{}, errVitalsFormat
		}
		if v.Diastolic, err = strconv.Atoi(dia); err != nil || v.Diastolic <= 0 {
			return domain.VitalsSnapshot{}, errVitalsFormat
		}
		rest = rest[1:]
	}
	if len(rest) == 1 {
		if v.HeartRate, err = utils.ParseIntLoose(rest[0]); err != nil || v.HeartRate <= 0 {
			return domain.VitalsSnapshot{}, errVitalsFormat
		}
		rest = rest[1:]
	}
	if len(rest) > 0 {
		return domain.VitalsSnapshot{}, errVitalsFormat
	}

	return v, nil
}
