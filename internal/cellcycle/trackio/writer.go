package trackio

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/banshee-data/cellcycle/internal/cellcycle/lineage"
	"github.com/banshee-data/cellcycle/internal/cellcycle/phase"
	"github.com/banshee-data/cellcycle/internal/cellcycle/phasetable"
)

// WriteResolved writes the resolved track table.
func WriteResolved(w io.Writer, rows []phase.ResolvedRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ResolvedColumns); err != nil {
		return err
	}
	for _, r := range rows {
		rec := append(trackFields(r.TrackRow), r.Label(), r.Name())
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTracks writes an unresolved track table.
func WriteTracks(w io.Writer, rows []phase.TrackRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TrackColumns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(trackFields(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func trackFields(r phase.TrackRow) []string {
	class := r.PredictedClass.String()
	if r.Emerging && r.PredictedClass == phase.Undetermined {
		class = phase.LabelEmerging
	}
	return []string{
		strconv.Itoa(r.Frame),
		strconv.Itoa(r.TrackID),
		strconv.Itoa(r.LineageID),
		strconv.Itoa(r.ParentTrackID),
		class,
		formatFloat(r.Probabilities[phase.ColG1G2]),
		formatFloat(r.Probabilities[phase.ColS]),
		formatFloat(r.Probabilities[phase.ColM]),
		formatFloat(r.MeanIntensity),
		formatFloat(r.BackgroundMean),
		formatBool(r.Emerging),
		formatFloat(r.MajorAxis),
		formatFloat(r.MinorAxis),
		strconv.Itoa(r.ContinuousLabel),
	}
}

// WritePhaseTable writes phase records. Absent durations are empty cells.
func WritePhaseTable(w io.Writer, records []phasetable.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(PhaseColumns); err != nil {
		return err
	}
	for _, r := range records {
		rec := []string{
			strconv.Itoa(r.Track),
			string(r.Type),
			strconv.Itoa(r.Length),
			formatIntPtr(r.Arrest),
			formatDuration(r.G1),
			formatDuration(r.S),
			formatIntPtr(r.M),
			formatDuration(r.G2),
			strconv.Itoa(r.Parent),
			formatBool(r.ImpreciseExit),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAnnotations writes one row per annotation record.
func WriteAnnotations(w io.Writer, anns []lineage.AnnRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(AnnotationColumns); err != nil {
		return err
	}
	for _, a := range anns {
		rec := []string{
			strconv.Itoa(a.Track),
			strconv.Itoa(a.MitosisParent),
			formatIntPtr(a.MEntry),
			formatIntPtr(a.MExit),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatDuration(d *phasetable.Duration) string {
	if d == nil {
		return ""
	}
	return d.String()
}
