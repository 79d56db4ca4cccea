package pipeline

import (
	"context"

	"github.com/banshee-data/cellcycle/internal/cellcycle/phase"
	"github.com/banshee-data/cellcycle/internal/cellcycle/resolve"
)

// Ground-truth masking constants. Annotated G2 frames are given an
// intensity above the fixed threshold so arrest tracks keep their
// annotated phase.
const (
	groundTruthG2Intensity = 200
	groundTruthThreshold   = 100
)

// GroundTruthOptions returns the parameters used to resolve annotated
// tracks: every run of one frame counts, and no track is filtered.
func GroundTruthOptions(workers int) Options {
	threshold := float64(groundTruthThreshold)
	return Options{
		Params: resolve.Params{
			MinG:              1,
			MinS:              1,
			MinM:              1,
			MinTrack:          0,
			MaxChangeFraction: resolve.DefaultMaxChangeFraction,
		},
		G2Threshold: &threshold,
		Workers:     workers,
	}
}

// ResolveGroundTruth resolves tracks whose predicted class is a manual
// annotation (G1, G2, S, M or E). Annotated G1 and G2 are hidden from the
// resolver and encoded in a synthetic intensity instead; resolved classes
// are joined back onto the original rows.
func ResolveGroundTruth(ctx context.Context, rows []phase.TrackRow, workers int) (*Result, error) {
	masked := make([]phase.TrackRow, len(rows))
	for i, r := range rows {
		masked[i] = MaskGroundTruth(r)
	}

	res, err := Run(ctx, masked, GroundTruthOptions(workers))
	if err != nil {
		return nil, err
	}

	type key struct{ track, frame int }
	original := make(map[key]phase.TrackRow, len(rows))
	for _, r := range rows {
		original[key{r.TrackID, r.Frame}] = r
	}
	for i, r := range res.Tracks {
		if o, ok := original[key{r.TrackID, r.Frame}]; ok {
			o.LineageID = r.LineageID
			res.Tracks[i].TrackRow = o
		}
	}
	return res, nil
}

// MaskGroundTruth converts one annotated row into resolver input.
func MaskGroundTruth(r phase.TrackRow) phase.TrackRow {
	if r.Probabilities.IsZero() {
		r.Probabilities = phase.OneHot(r.PredictedClass)
	}
	r.BackgroundMean = 0
	r.MeanIntensity = 0
	if r.PredictedClass == phase.G2 {
		r.MeanIntensity = groundTruthG2Intensity
	}
	if r.PredictedClass == phase.G1 || r.PredictedClass == phase.G2 {
		r.PredictedClass = phase.Undetermined
	}
	return r
}
