// Package resolve turns noisy per-frame classifier output into temporally
// consistent phase sequences.
//
// Responsibilities: single-track resolution (TrackResolver), recursive
// lineage traversal (Walker), and the per-run diagnostics report listing
// tracks that need manual inspection.
//
// Dependency rule: resolve may depend on phase, segment and lineage, but
// never on arrest or phasetable. Resolution is pure: every call returns new
// slices and never mutates the lineage index.
package resolve
