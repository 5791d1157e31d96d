package fibonacci

import (
	"context"
	"math/big"
)

// SequenceGenerator produces consecutive Fibonacci numbers, F(0) first.
//
//	gen := fibonacci.NewIterativeGenerator()
//	for i := 0; i < 10; i++ {
//		v, err := gen.Next(ctx)
//		...
//	}
type SequenceGenerator interface {
	// Next advances the generator and returns the new current term. The
	// first call returns F(0).
	Next(ctx context.Context) (*big.Int, error)

	// Current returns the current term, or nil before the first Next.
	Current() *big.Int

	// Index returns the index of the current term.
	Index() uint64

	// Reset rewinds the generator so that Next returns F(0) again.
	Reset()

	// Skip positions the generator on F(n) and returns it. A following Next
	// returns F(n+1).
	Skip(ctx context.Context, n uint64) (*big.Int, error)
}
