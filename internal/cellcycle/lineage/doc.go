// Package lineage builds the immutable lineage index of a tracked dataset.
//
// Responsibilities: grouping rows into tracks, assigning lineage ids from
// each track's root ancestor, detecting mitosis entry (parents) and exit
// (daughters) frames, and recording daughters whose exit could only be
// approximated. The index is an arena of nodes keyed by track id; parents
// own the list of daughter ids and daughters refer back by id only.
//
// Dependency rule: lineage may depend on phase and segment.
package lineage
