package fibonacci

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"testing"
)

// GoldenData is one entry of testdata/fibonacci_golden.json.
type GoldenData struct {
	N      uint64 `json:"n"`
	Result string `json:"result"`
}

func loadGolden(t *testing.T) []GoldenData {
	t.Helper()
	file, err := os.Open(filepath.Join("testdata", "fibonacci_golden.json"))
	if err != nil {
		t.Fatalf("Failed to open golden file: %v. Did you run 'go run ./cmd/generate-golden'?", err)
	}
	defer file.Close()

	var cases []GoldenData
	if err := json.NewDecoder(file).Decode(&cases); err != nil {
		t.Fatalf("Failed to decode golden file: %v", err)
	}
	return cases
}

func TestCalculatorsAgainstGoldenFile(t *testing.T) {
	t.Parallel()
	cases := loadGolden(t)
	ctx := context.Background()

	for name, calc := range testCalculators() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			for _, tc := range cases {
				t.Run(fmt.Sprintf("N=%d", tc.N), func(t *testing.T) {
					t.Parallel()
					expected, ok := new(big.Int).SetString(tc.Result, 10)
					if !ok {
						t.Fatalf("golden value for N=%d is not an integer", tc.N)
					}
					got, err := calc.Calculate(ctx, nil, 0, tc.N, Options{})
					if err != nil {
						t.Fatalf("Calculation failed for N=%d: %v", tc.N, err)
					}
					if got.Cmp(expected) != 0 {
						t.Errorf("Mismatch for N=%d.\nExpected: %s\nGot:      %s", tc.N, expected, got)
					}
				})
			}
		})
	}
}
