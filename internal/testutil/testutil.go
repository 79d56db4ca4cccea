// Package testutil provides shared test utilities and fixtures.
//
// This package centralises synthetic track builders and assertion helpers to
// reduce code duplication across the cellcycle test files.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/banshee-data/cellcycle/internal/cellcycle/phase"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// Repeat returns label repeated n times as a space separated sequence,
// for use with Track.
func Repeat(label string, n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSpace(strings.Repeat(label+" ", n))
}

// Seq joins label sequences built with Repeat.
func Seq(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// Track builds one track with consecutive frames from start, one row per
// whitespace separated label. Probabilities are one-hot on the label and
// "E" sets the emerging flag. It panics on an unknown label.
func Track(trackID, parentID, start int, labels string) []phase.TrackRow {
	fields := strings.Fields(labels)
	rows := make([]phase.TrackRow, 0, len(fields))
	for i, f := range fields {
		c, emerging, err := phase.ParseClass(f)
		if err != nil {
			panic(fmt.Sprintf("testutil.Track: %v", err))
		}
		rows = append(rows, phase.TrackRow{
			TrackID:        trackID,
			Frame:          start + i,
			ParentTrackID:  parentID,
			LineageID:      trackID,
			PredictedClass: c,
			Probabilities:  phase.OneHot(c),
			Emerging:       emerging,
		})
	}
	return rows
}

// WithIntensity sets the same mean and background intensity on every row.
func WithIntensity(rows []phase.TrackRow, mean, background float64) []phase.TrackRow {
	out := make([]phase.TrackRow, len(rows))
	for i, r := range rows {
		r.MeanIntensity = mean
		r.BackgroundMean = background
		out[i] = r
	}
	return out
}

// Concat joins several tracks into one table.
func Concat(tracks ...[]phase.TrackRow) []phase.TrackRow {
	var out []phase.TrackRow
	for _, t := range tracks {
		out = append(out, t...)
	}
	return out
}

// Resolved returns the resolved classes of one track in frame order.
func Resolved(rows []phase.ResolvedRow, trackID int) []phase.Class {
	var out []phase.Class
	for _, r := range rows {
		if r.TrackID == trackID {
			out = append(out, r.Resolved)
		}
	}
	return out
}

// Classes parses a whitespace separated label sequence. It panics on an
// unknown label.
func Classes(labels string) []phase.Class {
	fields := strings.Fields(labels)
	out := make([]phase.Class, len(fields))
	for i, f := range fields {
		c, _, err := phase.ParseClass(f)
		if err != nil {
			panic(fmt.Sprintf("testutil.Classes: %v", err))
		}
		out[i] = c
	}
	return out
}
