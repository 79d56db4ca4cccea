package trackio

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/cellcycle/internal/cellcycle/lineage"
	"github.com/banshee-data/cellcycle/internal/cellcycle/phase"
	"github.com/banshee-data/cellcycle/internal/cellcycle/phasetable"
)

func TestReadTracks_CanonicalHeader(t *testing.T) {
	in := strings.Join([]string{
		"frame,trackId,lineageId,parentTrackId,predictedClass,Probability_G1G2,Probability_S,Probability_M,meanIntensity,backgroundMean,emerging,majorAxis,minorAxis,continuousLabel",
		"0,1,1,0,G1/G2,0.9,0.05,0.05,120.5,20,0,14.2,9.1,3",
		"1,1,1,0,S,0.1,0.85,0.05,130,20,0,14.0,9.0,3",
		"2,1,1,0,E,0.7,0.1,0.2,110,20,0,13,9,3",
	}, "\n")

	rows, err := ReadTracks(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadTracks: %v", err)
	}
	want := []phase.TrackRow{
		{TrackID: 1, Frame: 0, LineageID: 1, PredictedClass: phase.Undetermined,
			Probabilities: phase.Probabilities{0.9, 0.05, 0.05}, MeanIntensity: 120.5, BackgroundMean: 20,
			MajorAxis: 14.2, MinorAxis: 9.1, ContinuousLabel: 3},
		{TrackID: 1, Frame: 1, LineageID: 1, PredictedClass: phase.S,
			Probabilities: phase.Probabilities{0.1, 0.85, 0.05}, MeanIntensity: 130, BackgroundMean: 20,
			MajorAxis: 14, MinorAxis: 9, ContinuousLabel: 3},
		{TrackID: 1, Frame: 2, LineageID: 1, PredictedClass: phase.Undetermined, Emerging: true,
			Probabilities: phase.Probabilities{0.7, 0.1, 0.2}, MeanIntensity: 110, BackgroundMean: 20,
			MajorAxis: 13, MinorAxis: 9, ContinuousLabel: 3},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestReadTracks_AliasedHeaderAndOptionalColumns(t *testing.T) {
	in := "trackId,frame,parentTrackId,predicted_class,Probability of S,mean_intensity\n" +
		"4,7,2.0,M,,55\n"

	rows, err := ReadTracks(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadTracks: %v", err)
	}
	want := []phase.TrackRow{{TrackID: 4, Frame: 7, ParentTrackID: 2, PredictedClass: phase.M, MeanIntensity: 55}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestReadTracks_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"missing column", "frame,trackId,predictedClass\n0,1,S\n"},
		{"bad class", "frame,trackId,parentTrackId,predictedClass\n0,1,0,X\n"},
		{"bad number", "frame,trackId,parentTrackId,predictedClass\nzero,1,0,S\n"},
		{"fractional id", "frame,trackId,parentTrackId,predictedClass\n0,1.5,0,S\n"},
		{"bad emerging", "frame,trackId,parentTrackId,predictedClass,emerging\n0,1,0,S,maybe\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTracks(strings.NewReader(tt.in))
			if !errors.Is(err, phase.ErrInvalidInput) {
				t.Errorf("got %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestWriteResolved_RoundTripsTrackColumns(t *testing.T) {
	rows := []phase.ResolvedRow{
		{TrackRow: phase.TrackRow{TrackID: 2, Frame: 10, ParentTrackID: 1, LineageID: 1,
			PredictedClass: phase.Undetermined, Emerging: true, Probabilities: phase.Probabilities{0.5, 0.25, 0.25},
			MeanIntensity: 99.5}, Resolved: phase.G1},
		{TrackRow: phase.TrackRow{TrackID: 3, Frame: 0, LineageID: 3, PredictedClass: phase.S}, Resolved: phase.G2Arrest},
	}

	var buf bytes.Buffer
	if err := WriteResolved(&buf, rows); err != nil {
		t.Fatalf("WriteResolved: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if !strings.HasSuffix(lines[0], ",resolvedClass,name") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], ",E,") || !strings.HasSuffix(lines[1], ",G1,2-1-G1") {
		t.Errorf("row 1 = %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], ",G2*,3-G2*") {
		t.Errorf("row 2 = %q", lines[2])
	}

	back, err := ReadTracks(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ReadTracks: %v", err)
	}
	want := []phase.TrackRow{rows[0].TrackRow, rows[1].TrackRow}
	if diff := cmp.Diff(want, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWritePhaseTable(t *testing.T) {
	four, twelve := 4, 12
	records := []phasetable.Record{
		{Track: 1, Type: phasetable.Normal, Length: 10,
			G1: &phasetable.Duration{Frames: 3, LowerBound: true}, S: &phasetable.Duration{Frames: 5}},
		{Track: 2, Type: phasetable.Normal, Length: 10, M: &four, Parent: 1, ImpreciseExit: true,
			G1: &phasetable.Duration{Frames: 7, LowerBound: true}},
		{Track: 4, Type: phasetable.ArrestG2, Length: 12, Arrest: &twelve},
	}
	var buf bytes.Buffer
	if err := WritePhaseTable(&buf, records); err != nil {
		t.Fatalf("WritePhaseTable: %v", err)
	}
	want := "track,type,length,arrest,G1,S,M,G2,parent,impreciseExit\n" +
		"1,normal,10,,>3,5,,,0,0\n" +
		"2,normal,10,,>7,,4,,1,1\n" +
		"4,arrest-G2,12,12,,,,,0,0\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("phase table mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteAnnotations(t *testing.T) {
	entry, exit := 8, 11
	anns := []lineage.AnnRecord{
		{Track: 1, MEntry: &entry},
		{Track: 2, MitosisParent: 1, MExit: &exit},
	}
	var buf bytes.Buffer
	if err := WriteAnnotations(&buf, anns); err != nil {
		t.Fatalf("WriteAnnotations: %v", err)
	}
	want := "track,mitosisParent,mEntry,mExit\n1,0,8,\n2,1,,11\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
