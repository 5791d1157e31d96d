package fibonacci

import (
	"errors"
	"fmt"
)

// ErrNegativeIndex is returned when a Fibonacci index below zero is requested.
// The algorithms themselves take a uint64; every signed input path goes
// through Index first.
var ErrNegativeIndex = errors.New("fibonacci index must be non-negative")

// ErrUnknownChoice is returned by AlgorithmForChoice for numbers other than
// 1 and 2.
var ErrUnknownChoice = errors.New("unknown algorithm choice")

// Index converts a signed index into the unsigned form the calculators take.
// Negative values are rejected with an error wrapping ErrNegativeIndex.
func Index(n int64) (uint64, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: got %d", ErrNegativeIndex, n)
	}
	return uint64(n), nil
}

// AlgorithmForChoice maps the numeric algorithm selector of the command
// line (1 = O(n), 2 = O(log n)) to a registered algorithm name.
func AlgorithmForChoice(choice int) (string, error) {
	switch choice {
	case 1:
		return AlgoLinear, nil
	case 2:
		return AlgoLogarithmic, nil
	default:
		return "", fmt.Errorf("%w: %d (expected 1 for %s or 2 for %s)", ErrUnknownChoice, choice, AlgoLinear, AlgoLogarithmic)
	}
}

// ChoiceForAlgorithm is the inverse of AlgorithmForChoice. It returns 0 for
// names without a numeric selector.
func ChoiceForAlgorithm(name string) int {
	switch name {
	case AlgoLinear:
		return 1
	case AlgoLogarithmic:
		return 2
	default:
		return 0
	}
}
