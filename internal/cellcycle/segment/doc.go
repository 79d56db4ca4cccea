// Package segment locates contiguous phase runs inside noisy per-frame
// classifier output.
//
// Responsibilities: confidence-weighted run detection (Segment, Runs, Best,
// First) and mitosis boundary lookup at the ends of a single track
// (FindMitosis). Every function is pure and deterministic.
//
// Dependency rule: segment may depend on phase only.
package segment
