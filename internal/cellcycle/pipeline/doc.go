// Package pipeline runs a complete resolution over one track table.
//
// Responsibilities:
//   - building the lineage index once per run
//   - resolving independent lineages on a bounded worker pool, each worker
//     writing to its own result slot
//   - merging, sorting and logging diagnostics after all lineages finish
//   - arrest classification and the phase table
//   - the ground-truth mode used to score annotated tracks
//
// Dependency rule: pipeline is the only cellcycle package that composes the
// others. Input rows are never modified; every derived structure belongs to
// the returned Result.
package pipeline
