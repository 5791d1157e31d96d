package fibonacci

import (
	"context"
	"math/big"
	"sync"
)

// skipIterateThreshold is the largest forward distance Skip walks with
// additions before switching to matrix exponentiation.
const skipIterateThreshold = 1000

// IterativeGenerator is a SequenceGenerator holding the rolling pair
// (F(index), F(index+1)). Values it returns are copies.
type IterativeGenerator struct {
	mu      sync.Mutex
	current *big.Int
	next    *big.Int
	index   uint64
	started bool
}

func NewIterativeGenerator() *IterativeGenerator {
	return &IterativeGenerator{
		current: big.NewInt(0),
		next:    big.NewInt(1),
	}
}

func (g *IterativeGenerator) Next(ctx context.Context) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.advance()
	return new(big.Int).Set(g.current), nil
}

// advance moves one step forward. The caller holds g.mu.
func (g *IterativeGenerator) advance() {
	if !g.started {
		g.started = true
		return
	}
	g.index++
	g.current, g.next = g.next, new(big.Int).Add(g.current, g.next)
}

func (g *IterativeGenerator) Current() *big.Int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.started {
		return nil
	}
	return new(big.Int).Set(g.current)
}

func (g *IterativeGenerator) Index() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.index
}

func (g *IterativeGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current = big.NewInt(0)
	g.next = big.NewInt(1)
	g.index = 0
	g.started = false
}

// Skip walks forward with additions when n is at most skipIterateThreshold
// terms ahead, and otherwise reads F(n) and F(n+1) from Q^n.
func (g *IterativeGenerator) Skip(ctx context.Context, n uint64) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if n == 0 {
		g.current, g.next = big.NewInt(0), big.NewInt(1)
		g.index, g.started = 0, true
		return big.NewInt(0), nil
	}
	if g.started && n >= g.index && n-g.index <= skipIterateThreshold {
		for g.index < n {
			g.advance()
		}
		return new(big.Int).Set(g.current), nil
	}
	if !g.started && n <= skipIterateThreshold {
		g.advance()
		for g.index < n {
			g.advance()
		}
		return new(big.Int).Set(g.current), nil
	}

	// Q^n = [[F(n+1), F(n)], [F(n), F(n-1)]]
	m, err := qPower(ctx, n)
	if err != nil {
		return nil, err
	}
	g.current = m.At(0, 1)
	g.next = m.At(0, 0)
	g.index = n
	g.started = true
	return new(big.Int).Set(g.current), nil
}

var _ SequenceGenerator = (*IterativeGenerator)(nil)
