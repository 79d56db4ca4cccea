package lineage

import (
	"fmt"
	"sort"

	"github.com/banshee-data/cellcycle/internal/cellcycle/phase"
	"github.com/banshee-data/cellcycle/internal/cellcycle/segment"
	"github.com/banshee-data/cellcycle/internal/monitoring"
)

// Node is one track in the lineage arena.
type Node struct {
	TrackID   int
	ParentID  int // 0 for roots
	LineageID int
	Daughters []int // ascending track ids
	Rows      []phase.TrackRow
}

// FirstFrame returns the track's first frame.
func (n *Node) FirstFrame() int { return n.Rows[0].Frame }

// LastFrame returns the track's last frame.
func (n *Node) LastFrame() int { return n.Rows[len(n.Rows)-1].Frame }

// Labels returns the raw predicted class per frame.
func (n *Node) Labels() []phase.Class {
	out := make([]phase.Class, len(n.Rows))
	for i, r := range n.Rows {
		out[i] = r.PredictedClass
	}
	return out
}

// AnnRecord summarises one track's place in a division event.
type AnnRecord struct {
	Track         int
	MitosisParent int  // 0 when the track is a root
	MEntry        *int // division frame inside this track, if it is a parent
	MExit         *int // mitosis exit frame inside this track, if it is a daughter
}

// Division is the LineageMap entry for one parent track.
type Division struct {
	Parent int
	// Entry is the parent's division frame; nil when no trailing M run
	// was detected.
	Entry *int
	// Exits maps each daughter to its detected mitosis exit frame.
	Exits map[int]int
}

// Index is the immutable lineage structure of one dataset.
type Index struct {
	nodes     map[int]*Node
	order     []int
	roots     []int
	ann       map[int]AnnRecord
	divisions map[int]*Division
	imprecise map[int]bool
}

// Build groups rows into tracks and derives lineage ids, the annotation
// records and the lineage map. Rows are copied; the caller's slice is not
// modified.
func Build(rows []phase.TrackRow) (*Index, error) {
	idx := &Index{
		nodes:     make(map[int]*Node),
		ann:       make(map[int]AnnRecord),
		divisions: make(map[int]*Division),
		imprecise: make(map[int]bool),
	}

	sorted := make([]phase.TrackRow, len(rows))
	copy(sorted, rows)
	phase.SortTracks(sorted)

	for i, r := range sorted {
		if r.TrackID <= 0 {
			return nil, fmt.Errorf("%w: track id must be positive, got %d", phase.ErrInvalidInput, r.TrackID)
		}
		if r.Frame < 0 {
			return nil, fmt.Errorf("%w: track %d has negative frame %d", phase.ErrInvalidInput, r.TrackID, r.Frame)
		}
		n, ok := idx.nodes[r.TrackID]
		if !ok {
			n = &Node{TrackID: r.TrackID, ParentID: r.ParentTrackID}
			idx.nodes[r.TrackID] = n
			idx.order = append(idx.order, r.TrackID)
		} else if sorted[i-1].Frame == r.Frame {
			return nil, fmt.Errorf("%w: duplicate frame %d in track %d", phase.ErrInvalidInput, r.Frame, r.TrackID)
		}
		n.Rows = append(n.Rows, r)
	}

	for _, id := range idx.order {
		n := idx.nodes[id]
		if n.ParentID == 0 {
			idx.roots = append(idx.roots, id)
			continue
		}
		if n.ParentID == id {
			return nil, fmt.Errorf("%w: track %d is its own parent", phase.ErrInvalidInput, id)
		}
		p, ok := idx.nodes[n.ParentID]
		if !ok {
			return nil, fmt.Errorf("%w: track %d references unknown parent %d", phase.ErrInvalidInput, id, n.ParentID)
		}
		p.Daughters = append(p.Daughters, id)
	}

	for _, id := range idx.order {
		root, err := idx.rootOf(id)
		if err != nil {
			return nil, err
		}
		n := idx.nodes[id]
		n.LineageID = root
		for i := range n.Rows {
			n.Rows[i].LineageID = root
		}
	}

	idx.annotate()
	return idx, nil
}

// rootOf walks parent links to the lineage root.
func (idx *Index) rootOf(id int) (int, error) {
	seen := make(map[int]bool)
	cur := id
	for {
		if seen[cur] {
			return 0, fmt.Errorf("%w: parent cycle through track %d", phase.ErrInvalidInput, cur)
		}
		seen[cur] = true
		n := idx.nodes[cur]
		if n.ParentID == 0 {
			return cur, nil
		}
		cur = n.ParentID
	}
}

// annotate detects mitosis boundaries and fills ann, divisions and
// imprecise. A division frame later than any daughter's first frame is
// discarded.
func (idx *Index) annotate() {
	for _, id := range idx.order {
		n := idx.nodes[id]
		rec := AnnRecord{Track: id, MitosisParent: n.ParentID}
		if n.ParentID != 0 {
			exit := n.FirstFrame()
			if i, ok := segment.FindMitosis(n.Labels(), segment.Begin); ok {
				exit = n.Rows[i].Frame
			} else {
				monitoring.Logf("mitosis exit not found for daughter: %d", id)
				idx.imprecise[id] = true
			}
			rec.MExit = intPtr(exit)

			d, ok := idx.divisions[n.ParentID]
			if !ok {
				d = &Division{Parent: n.ParentID, Exits: make(map[int]int)}
				idx.divisions[n.ParentID] = d
			}
			d.Exits[id] = exit
		}
		idx.ann[id] = rec
	}

	for _, parent := range idx.Parents() {
		d := idx.divisions[parent]
		n := idx.nodes[parent]
		i, ok := segment.FindMitosis(n.Labels(), segment.End)
		if !ok {
			monitoring.Logf("mitosis entry not found for parent: %d", parent)
			continue
		}
		entry := n.Rows[i].Frame
		if late := idx.daughtersBefore(parent, entry); len(late) > 0 {
			monitoring.Logf("division frame %d of parent %d follows start of daughters %v; leaving entry undetermined", entry, parent, late)
			continue
		}
		d.Entry = intPtr(entry)
		rec := idx.ann[parent]
		rec.MEntry = intPtr(entry)
		idx.ann[parent] = rec
	}
}

// daughtersBefore returns the daughters of parent that start before frame.
// Daughters that do not start right after the parent's last frame are
// logged.
func (idx *Index) daughtersBefore(parent, frame int) []int {
	p := idx.nodes[parent]
	var out []int
	for _, id := range p.Daughters {
		first := idx.nodes[id].FirstFrame()
		if first != p.LastFrame()+1 {
			monitoring.Logf("daughter %d starts at frame %d, parent %d ends at frame %d", id, first, parent, p.LastFrame())
		}
		if first < frame {
			out = append(out, id)
		}
	}
	return out
}

func intPtr(v int) *int { return &v }

// Track returns the node for a track id.
func (idx *Index) Track(id int) (*Node, bool) {
	n, ok := idx.nodes[id]
	return n, ok
}

// TrackIDs returns all track ids in ascending order.
func (idx *Index) TrackIDs() []int {
	return append([]int(nil), idx.order...)
}

// Roots returns the lineage root ids in ascending order.
func (idx *Index) Roots() []int {
	return append([]int(nil), idx.roots...)
}

// Ann returns the annotation record of a track.
func (idx *Index) Ann(id int) (AnnRecord, bool) {
	a, ok := idx.ann[id]
	return a, ok
}

// Annotations returns every annotation record ordered by track id.
func (idx *Index) Annotations() []AnnRecord {
	out := make([]AnnRecord, 0, len(idx.order))
	for _, id := range idx.order {
		out = append(out, idx.ann[id])
	}
	return out
}

// Division returns the lineage map entry of a parent track.
func (idx *Index) Division(parent int) (*Division, bool) {
	d, ok := idx.divisions[parent]
	return d, ok
}

// Parents returns the ids of every track with at least one daughter, in
// ascending order.
func (idx *Index) Parents() []int {
	out := make([]int, 0, len(idx.divisions))
	for id := range idx.divisions {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Daughters returns the daughters of a track in ascending order.
func (idx *Index) Daughters(parent int) []int {
	n, ok := idx.nodes[parent]
	if !ok {
		return nil
	}
	return append([]int(nil), n.Daughters...)
}

// Lineage returns every track id descending from root, root included, in
// depth-first order.
func (idx *Index) Lineage(root int) []int {
	var out []int
	var walk func(id int)
	walk = func(id int) {
		out = append(out, id)
		for _, d := range idx.nodes[id].Daughters {
			walk(d)
		}
	}
	if _, ok := idx.nodes[root]; ok {
		walk(root)
	}
	return out
}

// ImpreciseExit reports whether a daughter's mitosis exit fell back to its
// first frame.
func (idx *Index) ImpreciseExit(id int) bool {
	return idx.imprecise[id]
}

// ImpreciseExits returns the imprecise-exit daughters in ascending order.
func (idx *Index) ImpreciseExits() []int {
	out := make([]int, 0, len(idx.imprecise))
	for id := range idx.imprecise {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Len returns the number of tracks.
func (idx *Index) Len() int { return len(idx.order) }
