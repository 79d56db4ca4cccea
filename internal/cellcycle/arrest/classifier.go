package arrest

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/cellcycle/internal/cellcycle/phase"
)

// Threshold bounds on the background-corrected intensity scale.
const (
	MinThreshold = 1
	MaxThreshold = 255
)

// maxIterations caps two-means refinement. One-dimensional two-means
// converges in a handful of passes.
const maxIterations = 100

// Record maps an arrested track to its phase, G1 or G2.
type Record map[int]phase.Class

// TrackIDs returns the classified tracks in ascending order.
func (r Record) TrackIDs() []int {
	ids := make([]int, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Classifier assigns G1 or G2 to arrest candidates.
type Classifier struct {
	// Threshold is the corrected intensity above which a track is G2.
	// When nil, candidates are split by two-means clustering.
	Threshold *float64
}

// NewClassifier validates threshold and returns a Classifier.
func NewClassifier(threshold *float64) (Classifier, error) {
	if threshold != nil && (*threshold < MinThreshold || *threshold > MaxThreshold) {
		return Classifier{}, fmt.Errorf("%w: G2 threshold must be within %d-%d, got %g",
			phase.ErrInvalidInput, MinThreshold, MaxThreshold, *threshold)
	}
	return Classifier{Threshold: threshold}, nil
}

// Classify computes the mean corrected intensity of every candidate track
// in rows and labels it G1 or G2.
func (c Classifier) Classify(rows []phase.ResolvedRow, candidates []int) (Record, error) {
	if c.Threshold != nil && (*c.Threshold < MinThreshold || *c.Threshold > MaxThreshold) {
		return nil, fmt.Errorf("%w: G2 threshold must be within %d-%d, got %g",
			phase.ErrInvalidInput, MinThreshold, MaxThreshold, *c.Threshold)
	}

	ids := append([]int(nil), candidates...)
	sort.Ints(ids)
	means, err := MeanIntensities(rows, ids)
	if err != nil {
		return nil, err
	}

	rec := make(Record, len(ids))
	if len(ids) == 0 {
		return rec, nil
	}

	var high []bool
	if c.Threshold != nil {
		high = make([]bool, len(means))
		for i, m := range means {
			high[i] = m > *c.Threshold
		}
	} else {
		high = TwoMeans(Normalize(means))
	}
	for i, id := range ids {
		if high[i] {
			rec[id] = phase.G2
		} else {
			rec[id] = phase.G1
		}
	}
	return rec, nil
}

// MeanIntensities returns the mean corrected intensity of each track in ids,
// in the order given.
func MeanIntensities(rows []phase.ResolvedRow, ids []int) ([]float64, error) {
	byTrack := make(map[int][]float64, len(ids))
	for _, id := range ids {
		byTrack[id] = nil
	}
	for _, r := range rows {
		if vals, ok := byTrack[r.TrackID]; ok {
			byTrack[r.TrackID] = append(vals, r.CorrectedIntensity())
		}
	}
	out := make([]float64, len(ids))
	for i, id := range ids {
		vals := byTrack[id]
		if len(vals) == 0 {
			return nil, fmt.Errorf("%w: arrest candidate %d has no rows", phase.ErrInvalidInput, id)
		}
		out[i] = stat.Mean(vals, nil)
	}
	return out, nil
}

// Normalize rescales values to [0,1]. Constant input maps to all zeros.
func Normalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := floats.Min(values), floats.Max(values)
	span := hi - lo
	if span == 0 {
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / span
	}
	return out
}

// TwoMeans splits one-dimensional values into a low and a high cluster and
// reports, per value, whether it belongs to the high cluster. Centroids
// start at the extremes, so the result is deterministic. Fewer than two
// distinct values yield a single low cluster.
func TwoMeans(values []float64) []bool {
	high := make([]bool, len(values))
	if len(values) < 2 {
		return high
	}
	lo, hi := floats.Min(values), floats.Max(values)
	if lo == hi {
		return high
	}

	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		var lows, highs []float64
		for i, v := range values {
			h := v-lo > hi-v
			if h != high[i] {
				high[i] = h
				changed = true
			}
			if h {
				highs = append(highs, v)
			} else {
				lows = append(lows, v)
			}
		}
		if (iter > 0 && !changed) || len(lows) == 0 || len(highs) == 0 {
			break
		}
		lo, hi = stat.Mean(lows, nil), stat.Mean(highs, nil)
	}
	return high
}

// Apply returns a copy of rows where every frame of a classified track is
// relabelled G1* or G2*.
func Apply(rows []phase.ResolvedRow, rec Record) []phase.ResolvedRow {
	out := make([]phase.ResolvedRow, len(rows))
	copy(out, rows)
	for i := range out {
		switch rec[out[i].TrackID] {
		case phase.G1:
			out[i].Resolved = phase.G1Arrest
		case phase.G2:
			out[i].Resolved = phase.G2Arrest
		}
	}
	return out
}
