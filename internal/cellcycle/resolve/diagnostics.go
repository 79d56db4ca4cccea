package resolve

import (
	"sort"

	"github.com/banshee-data/cellcycle/internal/monitoring"
)

// Diagnostics lists tracks whose resolution needs manual inspection. It is
// returned by value and merged by the caller; nothing accumulates across
// runs.
type Diagnostics struct {
	// MitosisWithoutS holds tracks bounded by mitosis on both sides but
	// without a detectable S run. Their raw labels were kept.
	MitosisWithoutS []int
	// NumerousChanges holds tracks whose resolution changed more frames
	// than Params.MaxChangeFraction allows.
	NumerousChanges []int
	// ArrestCandidates holds tracks that stayed G1/G2 throughout.
	ArrestCandidates []int
}

// Merge returns the union of d and o with ids sorted.
func (d Diagnostics) Merge(o Diagnostics) Diagnostics {
	out := Diagnostics{
		MitosisWithoutS:  append(append([]int(nil), d.MitosisWithoutS...), o.MitosisWithoutS...),
		NumerousChanges:  append(append([]int(nil), d.NumerousChanges...), o.NumerousChanges...),
		ArrestCandidates: append(append([]int(nil), d.ArrestCandidates...), o.ArrestCandidates...),
	}
	sort.Ints(out.MitosisWithoutS)
	sort.Ints(out.NumerousChanges)
	sort.Ints(out.ArrestCandidates)
	return out
}

// Excluded returns the set of tracks left out of the phase table.
func (d Diagnostics) Excluded() map[int]bool {
	out := make(map[int]bool, len(d.MitosisWithoutS)+len(d.NumerousChanges))
	for _, id := range d.MitosisWithoutS {
		out[id] = true
	}
	for _, id := range d.NumerousChanges {
		out[id] = true
	}
	return out
}

// Empty reports whether no track was flagged for inspection.
func (d Diagnostics) Empty() bool {
	return len(d.MitosisWithoutS) == 0 && len(d.NumerousChanges) == 0
}

// Log reports the inspection lists through the monitoring logger.
func (d Diagnostics) Log() {
	monitoring.LogTrackIDs("sequential mitosis without S phase; ignoring tracks", d.MitosisWithoutS)
	monitoring.LogTrackIDs("numerous classification change after resolving, check", d.NumerousChanges)
}
