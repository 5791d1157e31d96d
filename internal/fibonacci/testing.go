package fibonacci

import (
	"context"
	"math/big"
	"sort"
)

// MockCalculator is a configurable Calculator for tests in other packages.
type MockCalculator struct {
	// CalcName is returned by Name. It defaults to "mock".
	CalcName string
	Result   *big.Int
	Err      error
	Fn       func(ctx context.Context, n uint64) (*big.Int, error)
}

func (m *MockCalculator) Name() string {
	if m.CalcName != "" {
		return m.CalcName
	}
	return "mock"
}

// Calculate calls Fn when set and returns Result and Err otherwise. A final
// progress of 1.0 is sent to a non-nil progressChan without blocking.
func (m *MockCalculator) Calculate(ctx context.Context, progressChan chan<- ProgressUpdate, calcIndex int, n uint64, opts Options) (*big.Int, error) {
	if m.Fn != nil {
		return m.Fn(ctx, n)
	}
	if progressChan != nil {
		select {
		case progressChan <- ProgressUpdate{CalculatorIndex: calcIndex, Value: 1.0}:
		default:
		}
	}
	return m.Result, m.Err
}

// TestFactory is a CalculatorFactory over a fixed set of calculators.
type TestFactory struct {
	calculators map[string]Calculator
}

func NewTestFactory(calculators map[string]Calculator) *TestFactory {
	if calculators == nil {
		calculators = make(map[string]Calculator)
	}
	return &TestFactory{calculators: calculators}
}

func (f *TestFactory) Create(name string) (Calculator, error) {
	return f.Get(name)
}

func (f *TestFactory) Get(name string) (Calculator, error) {
	calc, ok := f.calculators[name]
	if !ok {
		return nil, &UnknownCalculatorError{Name: name}
	}
	return calc, nil
}

func (f *TestFactory) List() []string {
	names := make([]string, 0, len(f.calculators))
	for name := range f.calculators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register is a no-op; the set is fixed at construction.
func (f *TestFactory) Register(string, func() coreCalculator) error {
	return nil
}

func (f *TestFactory) GetAll() map[string]Calculator {
	all := make(map[string]Calculator, len(f.calculators))
	for k, v := range f.calculators {
		all[k] = v
	}
	return all
}

var _ CalculatorFactory = (*TestFactory)(nil)
