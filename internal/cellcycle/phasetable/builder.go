package phasetable

import (
	"sort"

	"github.com/banshee-data/cellcycle/internal/cellcycle/lineage"
	"github.com/banshee-data/cellcycle/internal/cellcycle/phase"
	"github.com/banshee-data/cellcycle/internal/cellcycle/resolve"
)

// Build produces the phase table for every track in idx that was not
// flagged in diag, ordered by track id. rows are the resolved frames after
// arrest classification. Records shorter than minTrack frames are dropped.
func Build(idx *lineage.Index, rows []phase.ResolvedRow, diag resolve.Diagnostics, minTrack int) []Record {
	byTrack := make(map[int][]phase.ResolvedRow)
	for _, r := range rows {
		byTrack[r.TrackID] = append(byTrack[r.TrackID], r)
	}
	excluded := diag.Excluded()
	reverted := make(map[int]bool, len(diag.MitosisWithoutS))
	for _, id := range diag.MitosisWithoutS {
		reverted[id] = true
	}

	var out []Record
	for _, id := range idx.TrackIDs() {
		if excluded[id] {
			continue
		}
		track := byTrack[id]
		if len(track) == 0 {
			continue
		}
		sort.Slice(track, func(i, j int) bool { return track[i].Frame < track[j].Frame })

		rec := trackRecord(id, track)
		if ann, ok := idx.Ann(id); ok && ann.MitosisParent != 0 && !reverted[ann.MitosisParent] {
			rec.Parent = ann.MitosisParent
			rec.M = mitosisDuration(idx, ann)
		}
		if rec.Length < minTrack {
			continue
		}
		rec.ImpreciseExit = idx.ImpreciseExit(id)
		out = append(out, rec)
	}
	return out
}

func trackRecord(id int, track []phase.ResolvedRow) Record {
	length := track[len(track)-1].Frame - track[0].Frame + 1
	rec := Record{Track: id, Length: length}

	if t, ok := arrestType(track); ok {
		rec.Type = t
		rec.Arrest = intPtr(length)
		return rec
	}

	rec.Type = Normal
	first, last := track[0].Resolved, track[len(track)-1].Resolved
	rec.G1 = span(track, phase.G1, first, last)
	rec.S = span(track, phase.S, first, last)
	rec.G2 = span(track, phase.G2, first, last)
	return rec
}

// arrestType reports the arrest type of a track resolved to a single class.
func arrestType(track []phase.ResolvedRow) (LineageType, bool) {
	c := track[0].Resolved
	for _, r := range track[1:] {
		if r.Resolved != c {
			return "", false
		}
	}
	switch c {
	case phase.G1Arrest:
		return ArrestG1, true
	case phase.G2Arrest:
		return ArrestG2, true
	case phase.S:
		return ArrestS, true
	case phase.M:
		return ArrestM, true
	}
	return "", false
}

// span measures the frames from the first to the last occurrence of c. The
// duration is a lower bound when the track starts or ends in c.
func span(track []phase.ResolvedRow, c, first, last phase.Class) *Duration {
	start, end := -1, -1
	for _, r := range track {
		if r.Resolved != c {
			continue
		}
		if start < 0 {
			start = r.Frame
		}
		end = r.Frame
	}
	if start < 0 {
		return nil
	}
	return &Duration{Frames: end - start + 1, LowerBound: first == c || last == c}
}

// mitosisDuration is the daughter's mitosis exit minus the parent's division
// frame, inclusive. It is nil when the parent division was not detected.
func mitosisDuration(idx *lineage.Index, ann lineage.AnnRecord) *int {
	div, ok := idx.Division(ann.MitosisParent)
	if !ok || div.Entry == nil || ann.MExit == nil {
		return nil
	}
	return intPtr(*ann.MExit - *div.Entry + 1)
}

func intPtr(v int) *int { return &v }
