package segment

import (
	"testing"

	"github.com/banshee-data/cellcycle/internal/cellcycle/phase"
)

const (
	u = phase.Undetermined
	s = phase.S
	m = phase.M
)

func oneHot(labels []phase.Class) []phase.Probabilities {
	out := make([]phase.Probabilities, len(labels))
	for i, l := range labels {
		out[i] = phase.OneHot(l)
	}
	return out
}

func TestRuns_CleanRun(t *testing.T) {
	labels := []phase.Class{u, u, s, s, s, s, u, u}
	run, ok := Best(labels, oneHot(labels), Params{Target: phase.S, MinLength: 3, MaxResidual: 2})
	if !ok {
		t.Fatal("expected a run")
	}
	if run.Start != 2 || run.End != 5 {
		t.Errorf("run = [%d,%d], want [2,5]", run.Start, run.End)
	}
	if run.Support != 4 {
		t.Errorf("support = %v, want 4", run.Support)
	}
}

func TestRuns_BridgesIsolatedMislabel(t *testing.T) {
	labels := []phase.Class{u, u, s, u, s, u, u}
	run, ok := Best(labels, oneHot(labels), Params{Target: phase.S, MinLength: 3, MaxResidual: 1})
	if !ok {
		t.Fatal("mislabeled frame inside the run must not fragment it")
	}
	if run.Start != 2 || run.End != 4 {
		t.Errorf("run = [%d,%d], want [2,4]", run.Start, run.End)
	}
}

func TestRuns_GapAboveResidualSplits(t *testing.T) {
	labels := []phase.Class{s, s, s, u, u, u, s, s, s, s}
	runs := Runs(labels, oneHot(labels), Params{Target: phase.S, MinLength: 3, MaxResidual: 2})
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d: %+v", len(runs), runs)
	}
	best, _ := Best(labels, oneHot(labels), Params{Target: phase.S, MinLength: 3, MaxResidual: 2})
	if best.Start != 6 || best.End != 9 {
		t.Errorf("best = [%d,%d], want [6,9]", best.Start, best.End)
	}
	first, _ := First(labels, oneHot(labels), Params{Target: phase.S, MinLength: 3, MaxResidual: 2})
	if first.Start != 0 || first.End != 2 {
		t.Errorf("first = [%d,%d], want [0,2]", first.Start, first.End)
	}
}

func TestRuns_ShortRunRejected(t *testing.T) {
	labels := []phase.Class{u, u, s, s, u, u}
	if _, ok := Best(labels, oneHot(labels), Params{Target: phase.S, MinLength: 3, MaxResidual: 1}); ok {
		t.Error("a run of length 2 must not satisfy MinLength 3")
	}
}

func TestRuns_LowConfidenceRejected(t *testing.T) {
	labels := []phase.Class{u, s, s, s, u}
	probs := oneHot(labels)
	for i := 1; i <= 3; i++ {
		probs[i] = phase.Probabilities{0.45, 0.5, 0.05}
	}
	if _, ok := Best(labels, probs, Params{Target: phase.S, MinLength: 3, MaxResidual: 1}); ok {
		t.Error("low-confidence run should be rejected")
	}
}

func TestRuns_ConfidentGapNotBridged(t *testing.T) {
	// One gap frame, but the classifier is only 40% sure it is not S: cheap to bridge.
	labels := []phase.Class{s, s, u, s, s}
	probs := oneHot(labels)
	probs[2] = phase.Probabilities{0.6, 0.4, 0}
	run, ok := Best(labels, probs, Params{Target: phase.S, MinLength: 5, MaxResidual: 0.7})
	if !ok || run.Start != 0 || run.End != 4 {
		t.Errorf("expected bridged run [0,4], got %+v ok=%v", run, ok)
	}

	// A fully confident gap frame costs 1 and is not bridged at MaxResidual 0.7.
	probs[2] = phase.Probabilities{1, 0, 0}
	runs := Runs(labels, probs, Params{Target: phase.S, MinLength: 2, MaxResidual: 0.7})
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %+v", runs)
	}
}

func TestRuns_CasualEnd(t *testing.T) {
	labels := []phase.Class{m, m, u, u, u, u}
	probs := oneHot(labels)
	probs[0] = phase.Probabilities{0.3, 0.1, 0.6}
	probs[1] = phase.Probabilities{0.3, 0.1, 0.6}

	strict := Params{Target: phase.M, MinLength: 2, MaxResidual: 1}
	if _, ok := Best(labels, probs, strict); ok {
		t.Error("strict search should reject support 1.2 < 2")
	}
	casual := strict
	casual.CasualEnd = true
	run, ok := Best(labels, probs, casual)
	if !ok || run.Start != 0 || run.End != 1 {
		t.Errorf("casual end should accept boundary run [0,1], got %+v ok=%v", run, ok)
	}
}

func TestRuns_Empty(t *testing.T) {
	if runs := Runs(nil, nil, Params{Target: phase.S, MinLength: 1}); runs != nil {
		t.Errorf("expected nil, got %+v", runs)
	}
	labels := []phase.Class{u, u}
	if runs := Runs(labels, oneHot(labels), Params{Target: phase.S, MinLength: 1}); len(runs) != 0 {
		t.Errorf("expected no runs, got %+v", runs)
	}
}

func TestReverseAndMirror(t *testing.T) {
	labels := []phase.Class{u, u, u, m, m}
	rl, rp := Reverse(labels, oneHot(labels))
	run, ok := First(rl, rp, Params{Target: phase.M, MinLength: 2, MaxResidual: 1})
	if !ok || run.Start != 0 || run.End != 1 {
		t.Fatalf("reversed run = %+v ok=%v", run, ok)
	}
	fwd := run.Mirror(len(labels))
	if fwd.Start != 3 || fwd.End != 4 {
		t.Errorf("mirrored run = [%d,%d], want [3,4]", fwd.Start, fwd.End)
	}
	if !fwd.Overlaps(Run{Start: 4, End: 6}) || fwd.Overlaps(Run{Start: 0, End: 2}) {
		t.Error("Overlaps gave wrong answer")
	}
}

func TestDeterministic(t *testing.T) {
	labels := []phase.Class{u, s, u, s, s, u, u, s, s, s, u}
	probs := oneHot(labels)
	p := Params{Target: phase.S, MinLength: 2, MaxResidual: 1}
	a := Runs(labels, probs, p)
	b := Runs(labels, probs, p)
	if len(a) != len(b) {
		t.Fatal("non-deterministic run count")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("run %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestRuns_IsolatedFramesNotBridgedAcrossLongGap(t *testing.T) {
	labels := []phase.Class{u, u, s, u, u, u, u, u, u, s, u, u}
	p := Params{Target: phase.S, MinLength: 5, MaxResidual: 6}
	if run, ok := Best(labels, oneHot(labels), p); ok {
		t.Errorf("two isolated S frames must not form a run, got %+v", run)
	}
	if runs := Runs(labels, oneHot(labels), Params{Target: phase.S, MinLength: 1, MaxResidual: 6}); len(runs) != 2 {
		t.Errorf("expected 2 single-frame runs, got %+v", runs)
	}
}

func TestRuns_SplittingLowConfidenceRunDoesNotQualify(t *testing.T) {
	p := Params{Target: phase.S, MinLength: 3, MaxResidual: 6}
	lowS := phase.Probabilities{0.45, 0.5, 0.05}

	contiguous := []phase.Class{u, s, s, s, u}
	probs := oneHot(contiguous)
	for i := 1; i <= 3; i++ {
		probs[i] = lowS
	}
	if _, ok := Best(contiguous, probs, p); ok {
		t.Fatal("contiguous low-confidence run should be rejected")
	}

	split := []phase.Class{u, s, u, s, u, s, u}
	probs = oneHot(split)
	for _, i := range []int{1, 3, 5} {
		probs[i] = lowS
	}
	if run, ok := Best(split, probs, p); ok {
		t.Errorf("inserting non-target frames must not make the run qualify, got %+v", run)
	}
}

func TestRuns_GapDoesNotSwallowQualifyingRun(t *testing.T) {
	labels := []phase.Class{s, s, s, s, s, u, u, u, u, u, u, s}
	run, ok := Best(labels, oneHot(labels), Params{Target: phase.S, MinLength: 5, MaxResidual: 6})
	if !ok || run.Start != 0 || run.End != 4 {
		t.Fatalf("best = %+v ok=%v, want [0,4]", run, ok)
	}
	if run.Bridged != 0 || run.Evidence != 5 {
		t.Errorf("evidence/bridged = %v/%d, want 5/0", run.Evidence, run.Bridged)
	}
}

func TestRuns_MitosisAtBothEndsStaysSeparate(t *testing.T) {
	labels := []phase.Class{m, m, m, u, u, u, u, u, u, m, m, m}
	runs := Runs(labels, oneHot(labels), Params{Target: phase.M, MinLength: 3, MaxResidual: 6, CasualEnd: true})
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %+v", runs)
	}
	if runs[0].Start != 0 || runs[0].End != 2 || runs[1].Start != 9 || runs[1].End != 11 {
		t.Errorf("runs = %+v, want [0,2] and [9,11]", runs)
	}
}
