package trackio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/banshee-data/cellcycle/internal/cellcycle/phase"
)

// ReadTracks parses a track table. Columns are located by header name;
// optional columns that are missing or empty read as zero.
func ReadTracks(r io.Reader) ([]phase.TrackRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty track table", phase.ErrInvalidInput)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[canonical(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", phase.ErrInvalidInput, c)
		}
	}

	var rows []phase.TrackRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		row, err := parseRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type fieldReader struct {
	rec  []string
	cols map[string]int
	err  error
}

func (f *fieldReader) str(col string) string {
	i, ok := f.cols[col]
	if !ok || i >= len(f.rec) {
		return ""
	}
	return strings.TrimSpace(f.rec[i])
}

func (f *fieldReader) number(col string) float64 {
	s := f.str(col)
	if s == "" || f.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		f.err = fmt.Errorf("%w: column %s: %q is not a number", phase.ErrInvalidInput, col, s)
		return 0
	}
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// integer accepts integral floats such as "3.0", as written by dataframe tools.
func (f *fieldReader) integer(col string) int {
	v := f.number(col)
	if f.err == nil && v != math.Trunc(v) {
		f.err = fmt.Errorf("%w: column %s: %v is not an integer", phase.ErrInvalidInput, col, v)
	}
	return int(v)
}

func (f *fieldReader) flag(col string) bool {
	switch strings.ToLower(f.str(col)) {
	case "", "0", "0.0", "false":
		return false
	case "1", "1.0", "true":
		return true
	}
	if f.err == nil {
		f.err = fmt.Errorf("%w: column %s: %q is not a boolean", phase.ErrInvalidInput, col, f.str(col))
	}
	return false
}

func parseRow(rec []string, cols map[string]int) (phase.TrackRow, error) {
	f := &fieldReader{rec: rec, cols: cols}
	class, emerging, err := phase.ParseClass(f.str(ColPredictedClass))
	if err != nil {
		return phase.TrackRow{}, err
	}
	row := phase.TrackRow{
		TrackID:         f.integer(ColTrackID),
		Frame:           f.integer(ColFrame),
		ParentTrackID:   f.integer(ColParentTrackID),
		LineageID:       f.integer(ColLineageID),
		PredictedClass:  class,
		Probabilities:   phase.Probabilities{f.number(ColProbG1G2), f.number(ColProbS), f.number(ColProbM)},
		MeanIntensity:   f.number(ColMeanIntensity),
		BackgroundMean:  f.number(ColBackgroundMean),
		Emerging:        f.flag(ColEmerging) || emerging,
		MajorAxis:       f.number(ColMajorAxis),
		MinorAxis:       f.number(ColMinorAxis),
		ContinuousLabel: f.integer(ColContinuousLabel),
	}
	if f.err != nil {
		return phase.TrackRow{}, f.err
	}
	return row, nil
}
