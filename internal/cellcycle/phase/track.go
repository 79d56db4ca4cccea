package phase

import (
	"sort"
	"strconv"
)

// Probabilities holds the classifier confidence for the three detectable
// classes, in column order G1/G2, S, M.
type Probabilities [3]float64

// Probability column indexes.
const (
	ColG1G2 = 0
	ColS    = 1
	ColM    = 2
)

// Of returns the probability of the column that scores class c. Every G
// family class maps to the G1/G2 column.
func (p Probabilities) Of(c Class) float64 {
	switch c {
	case S:
		return p[ColS]
	case M:
		return p[ColM]
	}
	return p[ColG1G2]
}

// OneHot returns probabilities with full confidence on the column for c.
func OneHot(c Class) Probabilities {
	var p Probabilities
	switch c {
	case S:
		p[ColS] = 1
	case M:
		p[ColM] = 1
	default:
		p[ColG1G2] = 1
	}
	return p
}

// IsZero reports whether no probability was supplied.
func (p Probabilities) IsZero() bool {
	return p[0] == 0 && p[1] == 0 && p[2] == 0
}

// TrackRow is one tracked object at one frame.
type TrackRow struct {
	TrackID         int
	Frame           int
	ParentTrackID   int // 0 for lineage roots
	LineageID       int // recomputed by the lineage index
	PredictedClass  Class
	Probabilities   Probabilities
	MeanIntensity   float64
	BackgroundMean  float64
	Emerging        bool
	MajorAxis       float64
	MinorAxis       float64
	ContinuousLabel int
}

// CorrectedIntensity is the background-corrected mean intensity.
func (r TrackRow) CorrectedIntensity() float64 {
	return r.MeanIntensity - r.BackgroundMean
}

// ResolvedRow is a TrackRow with its temporally consistent phase label.
type ResolvedRow struct {
	TrackRow
	Resolved Class
	// EmergingLabel marks a frame of a track reverted to its raw labels
	// whose raw label was the emerging marker E.
	EmergingLabel bool
}

// Label renders the resolved class, or E for a retained emerging marker.
func (r ResolvedRow) Label() string {
	if r.EmergingLabel {
		return LabelEmerging
	}
	return r.Resolved.String()
}

// Name renders "<trackId>-<parentTrackId>-<resolvedClass>", omitting the
// parent segment for lineage roots.
func (r ResolvedRow) Name() string {
	name := strconv.Itoa(r.TrackID)
	if r.ParentTrackID != 0 {
		name += "-" + strconv.Itoa(r.ParentTrackID)
	}
	return name + "-" + r.Label()
}

// SortResolved orders rows by (trackId, frame).
func SortResolved(rows []ResolvedRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TrackID != rows[j].TrackID {
			return rows[i].TrackID < rows[j].TrackID
		}
		return rows[i].Frame < rows[j].Frame
	})
}

// SortTracks orders rows by (trackId, frame).
func SortTracks(rows []TrackRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TrackID != rows[j].TrackID {
			return rows[i].TrackID < rows[j].TrackID
		}
		return rows[i].Frame < rows[j].Frame
	})
}
