package resolve

// Default resolution parameters.
const (
	DefaultMinG              = 6
	DefaultMinS              = 5
	DefaultMinM              = 3
	DefaultMinTrack          = 10
	DefaultMaxChangeFraction = 0.2
)

// Params holds the run-length thresholds used during resolution.
type Params struct {
	// MinG, MinS and MinM are the minimum run lengths of each phase. MinS
	// and MinM gate S and M runs; MinG only widens the residual tolerance.
	MinG int
	MinS int
	MinM int
	// MinTrack is the shortest track considered when flagging numerous
	// classification changes.
	MinTrack int
	// MaxChangeFraction is the share of frames a resolution may change
	// before the track is flagged.
	MaxChangeFraction float64
}

// DefaultParams returns the default resolution parameters.
func DefaultParams() Params {
	return Params{
		MinG:              DefaultMinG,
		MinS:              DefaultMinS,
		MinM:              DefaultMinM,
		MinTrack:          DefaultMinTrack,
		MaxChangeFraction: DefaultMaxChangeFraction,
	}
}

// sResidual is the gap tolerance inside an S run.
func (p Params) sResidual() float64 {
	return float64(max(p.MinM, p.MinG))
}

// mResidual is the gap tolerance inside an M run.
func (p Params) mResidual() float64 {
	return float64(max(p.MinS, p.MinG))
}
