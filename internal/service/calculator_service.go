// Package service exposes Fibonacci calculation with metering as a single
// call, for the HTTP server.
package service

//go:generate mockgen -source=calculator_service.go -destination=mocks/mock_service.go -package=mocks

import (
	"context"
	"errors"
	"math/big"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/fibmeter/internal/config"
	apperrors "github.com/agbru/fibmeter/internal/errors"
	"github.com/agbru/fibmeter/internal/fibonacci"
	"github.com/agbru/fibmeter/internal/metering"
)

// ErrMaxValueExceeded is returned when n exceeds the configured limit.
var ErrMaxValueExceeded = errors.New("maximum n value exceeded")

// Result is one metered calculation.
type Result struct {
	Algorithm string
	Name      string
	N         uint64
	Value     *big.Int
	Report    metering.Report
	// Err is only set on the entries returned by Compare.
	Err error
}

// Service computes Fibonacci numbers by algorithm name.
type Service interface {
	// Calculate runs algo for n under a meter.
	Calculate(ctx context.Context, algo string, n uint64) (Result, error)
	// Compare runs every registered algorithm for n, one after the other,
	// and returns one entry per algorithm in name order. The error is an
	// apperrors.MismatchError when the successful entries disagree and the
	// first failure when none succeeded.
	Compare(ctx context.Context, n uint64) ([]Result, error)
	// Algorithms lists the registered algorithm names.
	Algorithms() []string
}

// CalculatorService implements Service over a calculator factory.
type CalculatorService struct {
	factory fibonacci.CalculatorFactory
	opts    fibonacci.Options
	maxN    uint64
}

var _ Service = (*CalculatorService)(nil)

// NewCalculatorService returns a service over factory. maxN of zero means no
// limit.
func NewCalculatorService(factory fibonacci.CalculatorFactory, cfg config.AppConfig, maxN uint64) *CalculatorService {
	return &CalculatorService{
		factory: factory,
		opts:    cfg.ToCalculationOptions(),
		maxN:    maxN,
	}
}

func (s *CalculatorService) Algorithms() []string {
	return s.factory.List()
}

func (s *CalculatorService) Calculate(ctx context.Context, algo string, n uint64) (Result, error) {
	if s.maxN > 0 && n > s.maxN {
		return Result{}, ErrMaxValueExceeded
	}
	calc, err := s.factory.Get(algo)
	if err != nil {
		return Result{}, err
	}
	return s.run(ctx, algo, calc, n)
}

func (s *CalculatorService) run(ctx context.Context, algo string, calc fibonacci.Calculator, n uint64) (Result, error) {
	res := Result{Algorithm: algo, Name: calc.Name(), N: n}
	report, err := metering.Measure(algo, func() error {
		var err error
		res.Value, err = calc.Calculate(ctx, nil, 0, n, s.opts)
		return err
	})
	res.Report = report
	if err != nil {
		return res, apperrors.CalculationError{Algorithm: algo, N: n, Cause: err}
	}
	return res, nil
}

func (s *CalculatorService) Compare(ctx context.Context, n uint64) ([]Result, error) {
	if s.maxN > 0 && n > s.maxN {
		return nil, ErrMaxValueExceeded
	}
	names := s.factory.List()
	results := make([]Result, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(1)
	for i, name := range names {
		g.Go(func() error {
			calc, err := s.factory.Get(name)
			if err != nil {
				results[i] = Result{Algorithm: name, N: n, Err: err}
				return nil
			}
			r, err := s.run(gctx, name, calc, n)
			r.Err = err
			results[i] = r
			return nil
		})
	}
	_ = g.Wait()

	var (
		first  *big.Int
		agreed []string
		diff   bool
		errs   []error
	)
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
			continue
		}
		agreed = append(agreed, r.Algorithm)
		if first == nil {
			first = r.Value
		} else if r.Value.Cmp(first) != 0 {
			diff = true
		}
	}
	switch {
	case diff:
		return results, apperrors.MismatchError{N: n, Algorithms: agreed}
	case first == nil && len(errs) > 0:
		return results, errs[0]
	}
	return results, nil
}
