package testutil

import (
	"testing"

	"github.com/banshee-data/cellcycle/internal/cellcycle/phase"
)

func TestAssertNoError(t *testing.T) {
	t.Parallel()

	// Verify nil error doesn't cause issues
	AssertNoError(t, nil)
}

func TestRepeatAndSeq(t *testing.T) {
	t.Parallel()

	got := Seq(Repeat("G1/G2", 2), Repeat("S", 0), Repeat("M", 1))
	if got != "G1/G2 G1/G2 M" {
		t.Errorf("Seq = %q", got)
	}
}

func TestTrack(t *testing.T) {
	t.Parallel()

	rows := Track(7, 3, 10, "M E S")
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Frame != 10 || rows[2].Frame != 12 {
		t.Errorf("frames = %d..%d, want 10..12", rows[0].Frame, rows[2].Frame)
	}
	if rows[1].PredictedClass != phase.Undetermined || !rows[1].Emerging {
		t.Errorf("E should parse to emerging G1/G2, got %+v", rows[1])
	}
	if rows[2].Probabilities != phase.OneHot(phase.S) {
		t.Errorf("expected one-hot S probabilities, got %v", rows[2].Probabilities)
	}
	if rows[0].ParentTrackID != 3 {
		t.Errorf("parent = %d, want 3", rows[0].ParentTrackID)
	}
}

func TestWithIntensity(t *testing.T) {
	t.Parallel()

	rows := WithIntensity(Track(1, 0, 0, "G1/G2 G1/G2"), 120, 20)
	for _, r := range rows {
		if r.CorrectedIntensity() != 100 {
			t.Errorf("corrected intensity = %v, want 100", r.CorrectedIntensity())
		}
	}
}
