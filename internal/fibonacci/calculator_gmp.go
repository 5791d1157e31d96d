//go:build gmp

// GMP-backed variants of both algorithms. Build with -tags=gmp; libgmp must
// be installed (libgmp-dev on Debian, gmp on Homebrew).

package fibonacci

import (
	"context"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/ncw/gmp"
)

const (
	AlgoGMPLinear      = "gmp-linear"
	AlgoGMPLogarithmic = "gmp-logn"
)

func init() {
	_ = RegisterCalculator(AlgoGMPLinear, func() coreCalculator { return &GMPLinearCalculator{} })
	_ = RegisterCalculator(AlgoGMPLogarithmic, func() coreCalculator { return &GMPMatrixCalculator{} })
}

func gmpToBig(g *gmp.Int) *big.Int {
	return new(big.Int).SetBytes(g.Bytes())
}

// GMPLinearCalculator is the linear sweep on gmp.Int.
type GMPLinearCalculator struct{}

func (c *GMPLinearCalculator) Name() string {
	return "GMP Linear (O(n), Dynamic Programming)"
}

func (c *GMPLinearCalculator) CalculateCore(ctx context.Context, reporter ProgressReporter, n uint64, opts Options) (*big.Int, error) {
	opts = normalizeOptions(opts)
	if n == 0 {
		return big.NewInt(0), nil
	}
	prev, cur := gmp.NewInt(0), gmp.NewInt(1)
	interval := uint64(opts.CheckInterval)
	lastReported := 0.0
	for i := uint64(2); i <= n; i++ {
		if i%interval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("gmp linear calculation canceled at index %d/%d: %w", i, n, err)
			}
			reportLinearProgress(reporter, &lastReported, i, n)
		}
		prev.Add(prev, cur)
		prev, cur = cur, prev
	}
	return gmpToBig(cur), nil
}

// gmpMatrix mirrors Matrix on gmp.Int.
type gmpMatrix struct {
	a, b, c, d *gmp.Int
}

func newGMPQ() *gmpMatrix {
	return &gmpMatrix{gmp.NewInt(1), gmp.NewInt(1), gmp.NewInt(1), gmp.NewInt(0)}
}

// mul sets m = m * o using the scratch integers in t, which must hold five
// values.
func (m *gmpMatrix) mul(o *gmpMatrix, t []*gmp.Int) {
	t[0].Mul(m.a, o.a)
	t[4].Mul(m.b, o.c)
	t[0].Add(t[0], t[4])

	t[1].Mul(m.a, o.b)
	t[4].Mul(m.b, o.d)
	t[1].Add(t[1], t[4])

	t[2].Mul(m.c, o.a)
	t[4].Mul(m.d, o.c)
	t[2].Add(t[2], t[4])

	t[3].Mul(m.c, o.b)
	t[4].Mul(m.d, o.d)
	t[3].Add(t[3], t[4])

	m.a.Set(t[0])
	m.b.Set(t[1])
	m.c.Set(t[2])
	m.d.Set(t[3])
}

// GMPMatrixCalculator is the matrix exponentiation on gmp.Int.
type GMPMatrixCalculator struct{}

func (c *GMPMatrixCalculator) Name() string {
	return "GMP Matrix Exponentiation (O(log n), Divide and Conquer)"
}

func (c *GMPMatrixCalculator) CalculateCore(ctx context.Context, reporter ProgressReporter, n uint64, opts Options) (*big.Int, error) {
	if n == 0 {
		return big.NewInt(0), nil
	}
	m, base := newGMPQ(), newGMPQ()
	scratch := []*gmp.Int{new(gmp.Int), new(gmp.Int), new(gmp.Int), new(gmp.Int), new(gmp.Int)}

	e := n - 1
	if e > 1 {
		steps := bits.Len64(e) - 1
		totalWork := CalcTotalWork(steps)
		powers := PrecomputePowers4(steps)
		workDone, lastReported := 0.0, -1.0
		for i := steps - 1; i >= 0; i-- {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("gmp matrix exponentiation canceled at bit %d/%d: %w", steps-1-i, steps, err)
			}
			m.mul(m, scratch)
			if (e>>uint(i))&1 == 1 {
				m.mul(base, scratch)
			}
			workDone = ReportStepProgress(reporter, &lastReported, totalWork, workDone, i, steps, powers)
		}
	}
	return gmpToBig(m.a), nil
}
