package resolve

import (
	"fmt"

	"github.com/banshee-data/cellcycle/internal/cellcycle/lineage"
	"github.com/banshee-data/cellcycle/internal/cellcycle/phase"
)

// LineageResult holds the resolved rows of one lineage, in traversal order.
type LineageResult struct {
	Root        int
	Rows        []phase.ResolvedRow
	Diagnostics Diagnostics
}

// Walker applies a TrackResolver over whole lineage trees.
type Walker struct {
	Index    *lineage.Index
	Resolver TrackResolver
}

// NewWalker creates a Walker over idx.
func NewWalker(idx *lineage.Index, p Params) Walker {
	return Walker{Index: idx, Resolver: NewTrackResolver(p)}
}

// ResolveLineage resolves the ancestor track root and then each of its
// descendants in depth-first order. The index is only read, so distinct
// lineages may be resolved concurrently.
func (w Walker) ResolveLineage(root int) (LineageResult, error) {
	if _, ok := w.Index.Track(root); !ok {
		return LineageResult{}, fmt.Errorf("%w: track %d not in lineage index", phase.ErrInvalidInput, root)
	}
	res := LineageResult{Root: root}
	for _, id := range w.Index.Lineage(root) {
		rows, diag, err := w.resolveTrack(id)
		if err != nil {
			return LineageResult{}, err
		}
		res.Rows = append(res.Rows, rows...)
		res.Diagnostics = res.Diagnostics.Merge(diag)
	}
	return res, nil
}

func (w Walker) resolveTrack(id int) ([]phase.ResolvedRow, Diagnostics, error) {
	node, _ := w.Index.Track(id)
	ann, _ := w.Index.Ann(id)

	tr, err := w.Resolver.Resolve(node.Rows, ann.MEntry, ann.MExit)
	if err != nil {
		return nil, Diagnostics{}, fmt.Errorf("resolve track %d: %w", id, err)
	}

	rows := make([]phase.ResolvedRow, len(node.Rows))
	for i, r := range node.Rows {
		rows[i] = phase.ResolvedRow{
			TrackRow:      r,
			Resolved:      tr.Resolved[i],
			EmergingLabel: tr.MitosisWithoutS && r.Emerging && tr.Resolved[i] == phase.Undetermined,
		}
	}
	return rows, tr.Diagnostics(), nil
}
