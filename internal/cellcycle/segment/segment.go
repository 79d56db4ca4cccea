package segment

import (
	"github.com/banshee-data/cellcycle/internal/cellcycle/phase"
)

// supportEpsilon absorbs float rounding when comparing summed
// probabilities against integer run lengths.
const supportEpsilon = 1e-9

// Params configures a run search.
type Params struct {
	// Target is the class whose runs are searched for (S or M).
	Target phase.Class
	// MinLength is the support a run needs to qualify.
	MinLength int
	// MaxResidual is the largest gap penalty bridged inside a run.
	MaxResidual float64
	// CasualEnd lets a run touching either end of the sequence qualify on
	// its frame span alone, since the observation window truncated it.
	CasualEnd bool
}

// Run is an inclusive [Start, End] interval of the target class.
type Run struct {
	Start int
	End   int
	// Evidence is the summed target probability of the run's target frames.
	Evidence float64
	// Bridged counts the non-target frames absorbed inside the run.
	Bridged int
	// Support is Evidence plus Bridged.
	Support float64
}

// Len returns the number of frames spanned by the run.
func (r Run) Len() int { return r.End - r.Start + 1 }

// Overlaps reports whether two runs share at least one frame.
func (r Run) Overlaps(o Run) bool {
	return r.Start <= o.End && o.Start <= r.End
}

// Runs returns every qualifying run of p.Target in scan order.
//
// Consecutive target frames are joined into one run when the frames between
// them cost at most p.MaxResidual, where each gap frame costs one minus its
// probability of being the target, and when the run's evidence would still
// exceed its bridged frame count. A run's support is its evidence plus one
// per bridged frame; it qualifies when the support reaches p.MinLength.
func Runs(labels []phase.Class, probs []phase.Probabilities, p Params) []Run {
	n := len(labels)
	if n == 0 || len(probs) != n {
		return nil
	}

	var out []Run
	cur := Run{Start: -1}
	flush := func() {
		if cur.Start >= 0 && qualifies(cur, n, p) {
			out = append(out, cur)
		}
	}
	start := func(i int) Run {
		e := probs[i].Of(p.Target)
		return Run{Start: i, End: i, Evidence: e, Support: e}
	}

	for i := 0; i < n; i++ {
		if labels[i] != p.Target {
			continue
		}
		if cur.Start < 0 {
			cur = start(i)
			continue
		}
		gap := i - cur.End - 1
		penalty := 0.0
		for g := cur.End + 1; g < i; g++ {
			penalty += 1 - probs[g].Of(p.Target)
		}
		evidence := cur.Evidence + probs[i].Of(p.Target)
		bridged := cur.Bridged + gap
		if penalty <= p.MaxResidual+supportEpsilon && evidence > float64(bridged)+supportEpsilon {
			cur.End = i
			cur.Evidence = evidence
			cur.Bridged = bridged
			cur.Support = evidence + float64(bridged)
		} else {
			flush()
			cur = start(i)
		}
	}
	flush()
	return out
}

func qualifies(r Run, n int, p Params) bool {
	if r.Evidence <= float64(r.Bridged)+supportEpsilon {
		return false
	}
	if r.Support+supportEpsilon >= float64(p.MinLength) {
		return true
	}
	if p.CasualEnd && (r.Start == 0 || r.End == n-1) {
		return r.Len() >= p.MinLength
	}
	return false
}

// Best returns the qualifying run with the highest support, preferring the
// earliest run on ties.
func Best(labels []phase.Class, probs []phase.Probabilities, p Params) (Run, bool) {
	runs := Runs(labels, probs, p)
	if len(runs) == 0 {
		return Run{}, false
	}
	best := runs[0]
	for _, r := range runs[1:] {
		if r.Support > best.Support+supportEpsilon {
			best = r
		}
	}
	return best, true
}

// First returns the earliest qualifying run.
func First(labels []phase.Class, probs []phase.Probabilities, p Params) (Run, bool) {
	runs := Runs(labels, probs, p)
	if len(runs) == 0 {
		return Run{}, false
	}
	return runs[0], true
}

// Reverse returns reversed copies of labels and probabilities, used to scan
// a track from its last frame.
func Reverse(labels []phase.Class, probs []phase.Probabilities) ([]phase.Class, []phase.Probabilities) {
	n := len(labels)
	rl := make([]phase.Class, n)
	rp := make([]phase.Probabilities, len(probs))
	for i := range labels {
		rl[n-1-i] = labels[i]
	}
	for i := range probs {
		rp[len(probs)-1-i] = probs[i]
	}
	return rl, rp
}

// Mirror maps a run found on a reversed sequence of length n back to
// forward indexes.
func (r Run) Mirror(n int) Run {
	r.Start, r.End = n-1-r.End, n-1-r.Start
	return r
}
