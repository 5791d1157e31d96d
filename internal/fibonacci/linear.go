package fibonacci

import (
	"context"
	"fmt"
	"math/big"
)

// Linear returns F(n) using the O(n) dynamic-programming sweep.
//
// It keeps only the last two terms of the table fib[0..n], seeded with
// fib[0] = 0 and fib[1] = 1, and performs exactly n-1 big-integer additions
// and no multiplications.
func Linear(n uint64) *big.Int {
	// Without a deadline the sweep cannot fail.
	res, _ := linearSweep(context.Background(), nil, n, DefaultCheckInterval)
	return res
}

// linearSweep is the cancellable form of Linear. Every checkInterval
// iterations it checks ctx and, if reporter is non-nil, reports i/n.
func linearSweep(ctx context.Context, reporter ProgressReporter, n uint64, checkInterval int) (*big.Int, error) {
	if n == 0 {
		return big.NewInt(0), nil
	}

	// prev = fib[i-2], cur = fib[i-1] at the top of each iteration.
	prev, cur := big.NewInt(0), big.NewInt(1)
	interval := uint64(checkInterval)
	lastReported := 0.0

	for i := uint64(2); i <= n; i++ {
		if i%interval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("linear calculation canceled at index %d/%d: %w", i, n, err)
			}
			if reporter != nil {
				reportLinearProgress(reporter, &lastReported, i, n)
			}
		}
		prev.Add(prev, cur)
		prev, cur = cur, prev
	}
	return cur, nil
}

// LinearCalculator computes Fibonacci numbers with the linear sweep.
// It is registered as "linear".
type LinearCalculator struct{}

// Name returns the display name of the algorithm.
func (c *LinearCalculator) Name() string {
	return "Linear (O(n), Dynamic Programming)"
}

// CalculateCore computes F(n), checking ctx and reporting progress every
// opts.CheckInterval additions.
func (c *LinearCalculator) CalculateCore(ctx context.Context, reporter ProgressReporter, n uint64, opts Options) (*big.Int, error) {
	opts = normalizeOptions(opts)
	return linearSweep(ctx, reporter, n, opts.CheckInterval)
}
