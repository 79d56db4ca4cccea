// Package phasetable aggregates resolved tracks into per-track phase
// duration records.
//
// Responsibilities:
//   - lineage type (normal or arrest-<phase>) and track length
//   - G1/S/G2 span lengths, marked as lower bounds when open-ended
//   - mitosis duration of daughters from the lineage map
//   - exclusion of flagged tracks and the minimum track length filter
//
// Dependency rule: phasetable reads lineage and resolve outputs; nothing in
// the resolution layers depends on it.
package phasetable
