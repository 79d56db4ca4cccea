package phase

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput reports a track table that violates the input contract.
var ErrInvalidInput = errors.New("invalid input")

// Class is a cell-cycle phase label. Raw classifier output only uses
// Undetermined, S and M (plus the emerging marker carried on TrackRow);
// G1, G2 and the arrest variants are produced by resolution.
type Class uint8

const (
	// Undetermined is the symbolic "G1/G2" class: G1 or G2, not yet told apart.
	Undetermined Class = iota
	// G1 is a resolved gap-1 frame.
	G1
	// S is a DNA-synthesis frame.
	S
	// G2 is a resolved gap-2 frame.
	G2
	// M is a mitotic frame.
	M
	// G1Arrest marks every frame of a track arrested in G1 ("G1*").
	G1Arrest
	// G2Arrest marks every frame of a track arrested in G2 ("G2*").
	G2Arrest
)

// Label strings used on the wire.
const (
	LabelUndetermined = "G1/G2"
	LabelG1           = "G1"
	LabelS            = "S"
	LabelG2           = "G2"
	LabelM            = "M"
	LabelG1Arrest     = "G1*"
	LabelG2Arrest     = "G2*"
	// LabelEmerging is the raw detector marker for a cell re-entering G1
	// from mitosis. It parses to Undetermined with the emerging flag set.
	LabelEmerging = "E"
)

var classLabels = [...]string{
	Undetermined: LabelUndetermined,
	G1:           LabelG1,
	S:            LabelS,
	G2:           LabelG2,
	M:            LabelM,
	G1Arrest:     LabelG1Arrest,
	G2Arrest:     LabelG2Arrest,
}

// String returns the wire label of the class.
func (c Class) String() string {
	if int(c) < len(classLabels) {
		return classLabels[c]
	}
	return fmt.Sprintf("Class(%d)", uint8(c))
}

// IsGap reports whether c belongs to the G family (G1/G2, G1, G2, G1*, G2*).
func (c Class) IsGap() bool {
	switch c {
	case Undetermined, G1, G2, G1Arrest, G2Arrest:
		return true
	}
	return false
}

// IsArrest reports whether c is one of the arrest-resolved variants.
func (c Class) IsArrest() bool {
	return c == G1Arrest || c == G2Arrest
}

// ParseClass parses a class label. The emerging marker "E" parses to
// Undetermined with emerging=true.
func ParseClass(s string) (c Class, emerging bool, err error) {
	switch strings.TrimSpace(s) {
	case LabelUndetermined:
		return Undetermined, false, nil
	case LabelG1:
		return G1, false, nil
	case LabelS:
		return S, false, nil
	case LabelG2:
		return G2, false, nil
	case LabelM:
		return M, false, nil
	case LabelG1Arrest:
		return G1Arrest, false, nil
	case LabelG2Arrest:
		return G2Arrest, false, nil
	case LabelEmerging:
		return Undetermined, true, nil
	}
	return Undetermined, false, fmt.Errorf("%w: unknown class label %q", ErrInvalidInput, s)
}

// Compatible reports whether a raw label and a resolved label agree for the
// purpose of counting classification changes: equal labels agree, and an
// undetermined label agrees with any member of the G family.
func Compatible(raw, resolved Class) bool {
	if raw == resolved {
		return true
	}
	if raw == Undetermined && resolved.IsGap() {
		return true
	}
	return resolved == Undetermined && raw.IsGap()
}
