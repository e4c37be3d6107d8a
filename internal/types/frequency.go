package types

import (
	"fmt"

	pkgerrors "github.com/reviseapp/revise-backend/internal/pkg/errors"
)

// RevisionFrequency is an ordered, strictly increasing sequence of day
// offsets from the topic anchor date. One schedule entry is generated per
// offset.
type RevisionFrequency []int

var (
	FrequencyLight     = RevisionFrequency{7, 14, 21}
	FrequencyStandard  = RevisionFrequency{7, 14, 21, 28}
	FrequencyIntensive = RevisionFrequency{3, 7, 14, 21, 28}
)

func (f RevisionFrequency) Validate() error {
	if len(f) == 0 {
		return fmt.Errorf("%w: frequency has no offsets", pkgerrors.ErrValidation)
	}
	prev := 0
	for i, offset := range f {
		if offset <= prev {
			return fmt.Errorf("%w: frequency offsets must be strictly increasing, got %d at index %d", pkgerrors.ErrValidation, offset, i)
		}
		prev = offset
	}
	return nil
}

// NextOffset returns the offset that follows current in the cycle sequence.
// ok is false when current is the last cycle (or not part of the sequence).
func (f RevisionFrequency) NextOffset(current int) (int, bool) {
	for i, offset := range f {
		if offset == current && i+1 < len(f) {
			return f[i+1], true
		}
	}
	return 0, false
}

// IndexOf returns the cycle index of the given offset, or -1.
func (f RevisionFrequency) IndexOf(offset int) int {
	for i, o := range f {
		if o == offset {
			return i
		}
	}
	return -1
}

// DeriveFrequency picks a preset from the topic's weightage and difficulty:
// sum <= 4 light, sum <= 7 standard, else intensive.
func DeriveFrequency(weightage, difficulty int) RevisionFrequency {
	sum := weightage + difficulty
	switch {
	case sum <= 4:
		return FrequencyLight
	case sum <= 7:
		return FrequencyStandard
	default:
		return FrequencyIntensive
	}
}
