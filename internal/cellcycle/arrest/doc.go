// Package arrest separates G1-arrested from G2-arrested tracks.
//
// Responsibilities:
//   - mean background-corrected intensity per arrest candidate
//   - classification by a fixed intensity threshold, or by two-means
//     clustering of min-max normalised intensities when no threshold is set
//   - rewriting every frame of a classified track to G1* or G2*
//
// Dependency rule: arrest depends on phase only. It never mutates the rows
// it is given; Apply returns a new slice.
package arrest
