package report

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/cellcycle/internal/cellcycle/phasetable"
)

// Phases reported, in table order.
var Phases = []string{"G1", "S", "G2", "M", "arrest"}

// PhaseStats describes the exact durations observed for one phase. Lower
// bound durations are counted but excluded from the statistics.
type PhaseStats struct {
	Phase       string
	N           int
	LowerBounds int
	Mean        float64
	StdDev      float64
	Min         float64
	Max         float64
}

// TypeCount is the number of tracks of one lineage type.
type TypeCount struct {
	Type  phasetable.LineageType
	Count int
}

// Summary aggregates a phase table.
type Summary struct {
	Tracks         int
	ImpreciseExits int
	Types          []TypeCount
	Phases         []PhaseStats
}

// Durations returns the exact durations of phase across records and the
// number of lower-bound durations skipped.
func Durations(records []phasetable.Record, phase string) (exact []float64, lowerBounds int) {
	for _, r := range records {
		var d *phasetable.Duration
		switch phase {
		case "G1":
			d = r.G1
		case "S":
			d = r.S
		case "G2":
			d = r.G2
		case "M":
			if r.M != nil {
				d = &phasetable.Duration{Frames: *r.M}
			}
		case "arrest":
			if r.Arrest != nil {
				d = &phasetable.Duration{Frames: *r.Arrest}
			}
		}
		if d == nil {
			continue
		}
		if d.LowerBound {
			lowerBounds++
			continue
		}
		exact = append(exact, float64(d.Frames))
	}
	return exact, lowerBounds
}

// Summarize computes the summary of records.
func Summarize(records []phasetable.Record) Summary {
	s := Summary{Tracks: len(records)}

	counts := make(map[phasetable.LineageType]int)
	for _, r := range records {
		counts[r.Type]++
		if r.ImpreciseExit {
			s.ImpreciseExits++
		}
	}
	for t, n := range counts {
		s.Types = append(s.Types, TypeCount{Type: t, Count: n})
	}
	sort.Slice(s.Types, func(i, j int) bool { return s.Types[i].Type < s.Types[j].Type })

	for _, p := range Phases {
		vals, lb := Durations(records, p)
		st := PhaseStats{Phase: p, N: len(vals), LowerBounds: lb}
		switch len(vals) {
		case 0:
		case 1:
			st.Mean, st.Min, st.Max = vals[0], vals[0], vals[0]
		default:
			st.Mean, st.StdDev = stat.MeanStdDev(vals, nil)
			st.Min, st.Max = floats.Min(vals), floats.Max(vals)
		}
		if math.IsNaN(st.StdDev) {
			st.StdDev = 0
		}
		s.Phases = append(s.Phases, st)
	}
	return s
}
