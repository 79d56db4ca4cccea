package resolve

import (
	"fmt"
	"sort"

	"github.com/banshee-data/cellcycle/internal/cellcycle/phase"
	"github.com/banshee-data/cellcycle/internal/cellcycle/segment"
)

// TrackResult is the resolution of one track.
type TrackResult struct {
	TrackID  int
	Resolved []phase.Class
	// FoundS is set when an S run anchored the resolution.
	FoundS bool
	// MitosisWithoutS is set when both mitosis boundaries were known but no
	// S run was found; Resolved then holds the raw labels.
	MitosisWithoutS bool
	// NumerousChanges is set when too many frames changed class.
	NumerousChanges bool
	// ArrestCandidate is set when every frame stayed G1/G2.
	ArrestCandidate bool
}

// Diagnostics returns the inspection lists contributed by this track.
func (r TrackResult) Diagnostics() Diagnostics {
	var d Diagnostics
	if r.MitosisWithoutS {
		d.MitosisWithoutS = []int{r.TrackID}
	}
	if r.NumerousChanges {
		d.NumerousChanges = []int{r.TrackID}
	}
	if r.ArrestCandidate {
		d.ArrestCandidates = []int{r.TrackID}
	}
	return d
}

// TrackResolver resolves a single track in isolation.
type TrackResolver struct {
	Params Params
}

// NewTrackResolver creates a TrackResolver.
func NewTrackResolver(p Params) TrackResolver {
	return TrackResolver{Params: p}
}

// Resolve assigns a phase to every frame of one track. rows must belong to
// a single track and be ordered by frame. mEntry is the division frame when
// the track is a mitosis parent; mExit is the mitosis exit frame when it is
// a daughter. Either may be nil.
func (tr TrackResolver) Resolve(rows []phase.TrackRow, mEntry, mExit *int) (TrackResult, error) {
	n := len(rows)
	if n == 0 {
		return TrackResult{}, fmt.Errorf("%w: track not found", phase.ErrInvalidInput)
	}

	res := TrackResult{TrackID: rows[0].TrackID}
	labels := make([]phase.Class, n)
	probs := make([]phase.Probabilities, n)
	for i, r := range rows {
		labels[i] = r.PredictedClass
		probs[i] = r.Probabilities
	}
	resolved := make([]phase.Class, n)

	sRun, ok := segment.Best(labels, probs, segment.Params{
		Target:      phase.S,
		MinLength:   tr.Params.MinS,
		MaxResidual: tr.Params.sResidual(),
	})
	if ok {
		res.FoundS = true
		for i := range resolved {
			switch {
			case i < sRun.Start:
				resolved[i] = phase.G1
			case i > sRun.End:
				resolved[i] = phase.G2
			default:
				resolved[i] = phase.S
			}
		}
	}

	if mExit != nil {
		exitIdx, err := frameIndex(rows, *mExit)
		if err != nil {
			return TrackResult{}, err
		}
		for i := 0; i < exitIdx; i++ {
			if rows[i].Emerging {
				exitIdx = i
				break
			}
		}
		for i := 0; i <= exitIdx; i++ {
			resolved[i] = phase.M
		}
		for i := exitIdx + 1; i < n && resolved[i] == phase.Undetermined; i++ {
			resolved[i] = phase.G1
		}
	}

	if mEntry != nil {
		entryIdx, err := frameIndex(rows, *mEntry)
		if err != nil {
			return TrackResult{}, err
		}
		for i := entryIdx; i < n; i++ {
			resolved[i] = phase.M
		}
		for i := entryIdx - 1; i >= 0 && resolved[i] == phase.Undetermined; i-- {
			resolved[i] = phase.G2
		}
	}

	if !res.FoundS && mExit != nil && mEntry != nil {
		copy(resolved, labels)
		res.MitosisWithoutS = true
	}

	if mExit == nil && mEntry == nil {
		tr.resolveTerminalMitosis(labels, probs, resolved)
	}

	if float64(Changes(labels, resolved)) > tr.Params.MaxChangeFraction*float64(n) && n >= tr.Params.MinTrack {
		res.NumerousChanges = true
	}
	res.ArrestCandidate = allUndetermined(resolved)
	res.Resolved = resolved
	return res, nil
}

// resolveTerminalMitosis overrides an M run found at either end of a track
// that is not part of a detected division. When both scans yield the same
// candidate, the one starting earlier in its own scan direction wins. Two
// distinct candidates leave the track untouched.
func (tr TrackResolver) resolveTerminalMitosis(labels []phase.Class, probs []phase.Probabilities, resolved []phase.Class) {
	n := len(labels)
	p := segment.Params{
		Target:      phase.M,
		MinLength:   tr.Params.MinM,
		MaxResidual: tr.Params.mResidual(),
		CasualEnd:   true,
	}

	lead, leadOK := segment.First(labels, probs, p)
	rl, rp := segment.Reverse(labels, probs)
	tailRev, tailOK := segment.First(rl, rp, p)
	tail := tailRev.Mirror(n)

	if leadOK && tailOK {
		if !lead.Overlaps(tail) {
			return
		}
		if tailRev.Start < lead.Start {
			leadOK = false
		} else {
			tailOK = false
		}
	}

	if leadOK && lead.Start == 0 {
		for i := 0; i <= lead.End; i++ {
			resolved[i] = phase.M
		}
		if allUndetermined(resolved[lead.End+1:]) {
			for i := lead.End + 1; i < n; i++ {
				resolved[i] = phase.G1
			}
		}
	}
	if tailOK && tail.End == n-1 {
		for i := tail.Start; i < n; i++ {
			resolved[i] = phase.M
		}
		if allUndetermined(resolved[:tail.Start]) {
			for i := 0; i < tail.Start; i++ {
				resolved[i] = phase.G2
			}
		}
	}
}

// Changes counts frames whose resolved class disagrees with the raw label.
// Refining G1/G2 into a G family member is not a change.
func Changes(raw, resolved []phase.Class) int {
	count := 0
	for i := range raw {
		if !phase.Compatible(raw[i], resolved[i]) {
			count++
		}
	}
	return count
}

func allUndetermined(cls []phase.Class) bool {
	for _, c := range cls {
		if c != phase.Undetermined {
			return false
		}
	}
	return true
}

// frameIndex finds the position of frame within a track's rows.
func frameIndex(rows []phase.TrackRow, frame int) (int, error) {
	i := sort.Search(len(rows), func(i int) bool { return rows[i].Frame >= frame })
	if i == len(rows) || rows[i].Frame != frame {
		return 0, fmt.Errorf("%w: frame %d not in track %d", phase.ErrInvalidInput, frame, rows[0].TrackID)
	}
	return i, nil
}
