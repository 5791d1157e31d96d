package fibonacci

import (
	"context"
	"fmt"
	"math/big"
	"math/bits"
)

// Logarithmic returns F(n) using O(log n) matrix exponentiation.
//
// It raises Q = [[1, 1], [1, 0]] to the power n-1 in place and reads F(n)
// from the top-left cell, since Q^k = [[F(k+1), F(k)], [F(k), F(k-1)]].
func Logarithmic(n uint64) *big.Int {
	res, _ := logarithmic(context.Background(), nil, n)
	return res
}

func logarithmic(ctx context.Context, reporter ProgressReporter, n uint64) (*big.Int, error) {
	if n == 0 {
		return big.NewInt(0), nil
	}
	m := FibonacciQ()
	if err := power(ctx, reporter, m, n-1); err != nil {
		return nil, err
	}
	return new(big.Int).Set(m.a), nil
}

// power raises m, which must hold Q on entry, to the e-th power in place.
// For e of 0 or 1 m is left unchanged.
//
// This is the stack-safe form of the halving recursion
//
//	power(m, e/2); m = m*m; if e is odd { m = m*Q }
//
// unrolled over the bits of e from the most significant one downwards: the
// leading bit corresponds to the initial m = Q, and every following bit costs
// one squaring plus one extra multiplication by Q when the bit is set.
func power(ctx context.Context, reporter ProgressReporter, m *Matrix, e uint64) error {
	if e <= 1 {
		return nil
	}

	base := FibonacciQ()
	steps := bits.Len64(e) - 1
	totalWork := CalcTotalWork(steps)
	powers := PrecomputePowers4(steps)
	workDone := 0.0
	lastReported := -1.0

	for i := steps - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("matrix exponentiation canceled at bit %d/%d: %w", steps-1-i, steps, err)
		}

		m.Mul(m)
		if (e>>uint(i))&1 == 1 {
			m.Mul(base)
		}

		if reporter != nil {
			workDone = ReportStepProgress(reporter, &lastReported, totalWork, workDone, i, steps, powers)
		}
	}
	return nil
}

// qPower returns Q^k for k >= 1.
func qPower(ctx context.Context, k uint64) (*Matrix, error) {
	m := FibonacciQ()
	if err := power(ctx, nil, m, k); err != nil {
		return nil, err
	}
	return m, nil
}

// MatrixCalculator computes Fibonacci numbers with logarithmic matrix
// exponentiation. It is registered as "logn".
type MatrixCalculator struct{}

// Name returns the display name of the algorithm.
func (c *MatrixCalculator) Name() string {
	return "Matrix Exponentiation (O(log n), Divide and Conquer)"
}

// CalculateCore computes F(n), checking ctx once per exponent bit.
func (c *MatrixCalculator) CalculateCore(ctx context.Context, reporter ProgressReporter, n uint64, opts Options) (*big.Int, error) {
	return logarithmic(ctx, reporter, n)
}
