package segment

import (
	"github.com/banshee-data/cellcycle/internal/cellcycle/phase"
)

// Direction selects which end of a track FindMitosis inspects.
type Direction int

const (
	// Begin inspects the M run that opens a daughter track and reports its
	// last frame: the mitosis exit, after which the daughter is in G1.
	Begin Direction = iota
	// End inspects the M run that closes a parent track and reports its
	// first frame: the division (mitosis entry).
	End
)

func (d Direction) String() string {
	if d == Begin {
		return "begin"
	}
	return "end"
}

// FindMitosis returns the index of the mitosis boundary at one end of a
// track's raw labels, or false when the track does not start (Begin) or
// finish (End) with an M run.
func FindMitosis(labels []phase.Class, dir Direction) (int, bool) {
	n := len(labels)
	if n == 0 {
		return 0, false
	}
	switch dir {
	case Begin:
		if labels[0] != phase.M {
			return 0, false
		}
		i := 0
		for i+1 < n && labels[i+1] == phase.M {
			i++
		}
		return i, true
	default:
		if labels[n-1] != phase.M {
			return 0, false
		}
		i := n - 1
		for i-1 >= 0 && labels[i-1] == phase.M {
			i--
		}
		return i, true
	}
}
