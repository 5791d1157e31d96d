package fibonacci

import (
	"context"
	"errors"
	"math/big"
	"reflect"
	"testing"
)

// stubCore is a coreCalculator returning a fixed value.
type stubCore struct {
	name   string
	result *big.Int
	err    error
}

func (s *stubCore) Name() string { return s.name }
func (s *stubCore) CalculateCore(ctx context.Context, reporter ProgressReporter, n uint64, opts Options) (*big.Int, error) {
	if s.err != nil {
		return nil, s.err
	}
	reporter(0.5)
	return s.result, nil
}

func TestDefaultFactory(t *testing.T) {
	t.Parallel()
	factory := NewDefaultFactory()

	t.Run("defaults", func(t *testing.T) {
		if got, want := factory.List(), []string{AlgoLinear, AlgoLogarithmic}; !reflect.DeepEqual(got, want) {
			t.Errorf("List() = %v, want %v", got, want)
		}
		if _, ok := factory.MustGet(AlgoLinear).(*FibCalculator).core.(*LinearCalculator); !ok {
			t.Error("linear should be backed by LinearCalculator")
		}
		if _, ok := factory.MustGet(AlgoLogarithmic).(*FibCalculator).core.(*MatrixCalculator); !ok {
			t.Error("logn should be backed by MatrixCalculator")
		}
	})

	t.Run("register validation", func(t *testing.T) {
		if err := factory.Register("", func() coreCalculator { return &stubCore{} }); err == nil {
			t.Error("empty name should be rejected")
		}
		if err := factory.Register("nil", nil); err == nil {
			t.Error("nil creator should be rejected")
		}
	})

	t.Run("register replaces cached instance", func(t *testing.T) {
		f := NewDefaultFactory()
		_ = f.Register("stub", func() coreCalculator { return &stubCore{name: "one"} })
		first := f.MustGet("stub")
		if first != f.MustGet("stub") {
			t.Error("Get should return the cached instance")
		}
		_ = f.Register("stub", func() coreCalculator { return &stubCore{name: "two"} })
		if got := f.MustGet("stub").Name(); got != "two" {
			t.Errorf("Name() = %q after re-register, want two", got)
		}
	})

	t.Run("create is uncached", func(t *testing.T) {
		a, err := factory.Create(AlgoLinear)
		if err != nil {
			t.Fatal(err)
		}
		b, _ := factory.Create(AlgoLinear)
		if a == b {
			t.Error("Create should return a fresh instance")
		}
	})

	t.Run("unknown", func(t *testing.T) {
		var unknown *UnknownCalculatorError
		if _, err := factory.Get("nope"); !errors.As(err, &unknown) || unknown.Name != "nope" {
			t.Errorf("Get(nope) error = %v", err)
		}
		if _, err := factory.Create("nope"); err == nil {
			t.Error("Create should fail for an unknown calculator")
		}
		if factory.Has("nope") {
			t.Error("Has(nope) = true")
		}
		defer func() {
			if recover() == nil {
				t.Error("MustGet should have panicked")
			}
		}()
		factory.MustGet("nope")
	})

	t.Run("get all", func(t *testing.T) {
		all := factory.GetAll()
		if len(all) != 2 {
			t.Errorf("GetAll() returned %d calculators, want 2", len(all))
		}
		delete(all, AlgoLinear)
		if !factory.Has(AlgoLinear) {
			t.Error("GetAll must return a copy")
		}
	})
}

func TestGlobalFactory(t *testing.T) {
	t.Parallel()
	f := GlobalFactory()
	if f == nil {
		t.Fatal("GlobalFactory returned nil")
	}
	for _, name := range []string{AlgoLinear, AlgoLogarithmic} {
		if !f.Has(name) {
			t.Errorf("global factory is missing %q", name)
		}
	}
}

func TestAlgorithmForChoice(t *testing.T) {
	t.Parallel()
	tests := []struct {
		choice  int
		want    string
		wantErr bool
	}{
		{1, AlgoLinear, false},
		{2, AlgoLogarithmic, false},
		{0, "", true},
		{3, "", true},
		{-1, "", true},
	}
	for _, tt := range tests {
		got, err := AlgorithmForChoice(tt.choice)
		if (err != nil) != tt.wantErr {
			t.Errorf("AlgorithmForChoice(%d) error = %v, wantErr %v", tt.choice, err, tt.wantErr)
		}
		if tt.wantErr && !errors.Is(err, ErrUnknownChoice) {
			t.Errorf("AlgorithmForChoice(%d) error should wrap ErrUnknownChoice", tt.choice)
		}
		if got != tt.want {
			t.Errorf("AlgorithmForChoice(%d) = %q, want %q", tt.choice, got, tt.want)
		}
	}
}

func TestIndex(t *testing.T) {
	t.Parallel()
	if n, err := Index(42); err != nil || n != 42 {
		t.Errorf("Index(42) = %d, %v", n, err)
	}
	if _, err := Index(-5); !errors.Is(err, ErrNegativeIndex) {
		t.Errorf("Index(-5) error = %v, want ErrNegativeIndex", err)
	}
}
