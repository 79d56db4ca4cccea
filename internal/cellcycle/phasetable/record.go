package phasetable

import (
	"strconv"
	"strings"
)

// LineageType classifies a track in the phase table.
type LineageType string

// Lineage types.
const (
	Normal   LineageType = "normal"
	ArrestG1 LineageType = "arrest-G1"
	ArrestG2 LineageType = "arrest-G2"
	ArrestS  LineageType = "arrest-S"
	ArrestM  LineageType = "arrest-M"
)

// IsArrest reports whether t is one of the arrest types.
func (t LineageType) IsArrest() bool {
	return strings.HasPrefix(string(t), "arrest-")
}

// Duration is a phase span in frames. LowerBound marks a span cut by the
// start or end of the observation, rendered as ">n".
type Duration struct {
	Frames     int
	LowerBound bool
}

func (d Duration) String() string {
	if d.LowerBound {
		return ">" + strconv.Itoa(d.Frames)
	}
	return strconv.Itoa(d.Frames)
}

// ParseDuration parses "n" or ">n".
func ParseDuration(s string) (Duration, error) {
	var d Duration
	if strings.HasPrefix(s, ">") {
		d.LowerBound = true
		s = s[1:]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Duration{}, err
	}
	d.Frames = n
	return d, nil
}

// Record is one row of the phase table. Nil fields are absent.
type Record struct {
	Track         int
	Type          LineageType
	Length        int
	Arrest        *int
	G1            *Duration
	S             *Duration
	G2            *Duration
	M             *int
	Parent        int
	ImpreciseExit bool
}
