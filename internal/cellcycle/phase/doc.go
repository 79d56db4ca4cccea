// Package phase owns the shared data model of the cell-cycle resolution
// engine.
//
// Responsibilities: the phase Class vocabulary (raw and resolved), per-frame
// classifier probabilities, and the TrackRow / ResolvedRow records that flow
// between the segment, lineage, resolve, arrest and phasetable layers.
//
// Dependency rule: phase depends on nothing else in internal/cellcycle.
// No I/O is allowed in this package.
package phase
