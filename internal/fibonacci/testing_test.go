package fibonacci

import (
	"context"
	"errors"
	"math/big"
	"reflect"
	"testing"
)

func TestMockCalculator(t *testing.T) {
	t.Parallel()

	m := &MockCalculator{Result: big.NewInt(5)}
	if m.Name() != "mock" {
		t.Errorf("Name() = %q", m.Name())
	}
	ch := make(chan ProgressUpdate, 1)
	got, err := m.Calculate(context.Background(), ch, 3, 5, Options{})
	if err != nil || got.Int64() != 5 {
		t.Errorf("Calculate() = %v, %v", got, err)
	}
	if u := <-ch; u.CalculatorIndex != 3 || u.Value != 1.0 {
		t.Errorf("progress = %+v", u)
	}

	boom := errors.New("boom")
	fn := &MockCalculator{CalcName: "fn", Fn: func(context.Context, uint64) (*big.Int, error) { return nil, boom }}
	if _, err := fn.Calculate(context.Background(), nil, 0, 1, Options{}); !errors.Is(err, boom) {
		t.Errorf("Fn error not returned: %v", err)
	}
	if fn.Name() != "fn" {
		t.Errorf("Name() = %q, want fn", fn.Name())
	}
}

func TestTestFactory(t *testing.T) {
	t.Parallel()

	mock := &MockCalculator{}
	f := NewTestFactory(map[string]Calculator{"b": mock, "a": mock})
	if got := f.List(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("List() = %v", got)
	}
	if c, err := f.Create("a"); err != nil || c != mock {
		t.Errorf("Create(a) = %v, %v", c, err)
	}
	if _, err := f.Get("missing"); err == nil {
		t.Error("Get(missing) should fail")
	}
	if err := f.Register("x", nil); err != nil {
		t.Error(err)
	}
	if len(f.GetAll()) != 2 {
		t.Error("GetAll() should return both calculators")
	}
	if len(NewTestFactory(nil).List()) != 0 {
		t.Error("nil map should produce an empty factory")
	}
}
