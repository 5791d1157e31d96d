package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/agbru/fibmeter/internal/config"
	"github.com/agbru/fibmeter/internal/fibonacci"
)

func testFactory() fibonacci.CalculatorFactory {
	return fibonacci.NewTestFactory(map[string]fibonacci.Calculator{
		"logn":   &fibonacci.MockCalculator{CalcName: "Matrix"},
		"linear": &fibonacci.MockCalculator{CalcName: "Linear"},
	})
}

func TestGetCalculatorsToRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		algo string
		want []string
	}{
		{"linear", []string{"linear"}},
		{"all", []string{"linear", "logn"}},
		{"unknown", nil},
	}
	for _, tt := range tests {
		t.Run(tt.algo, func(t *testing.T) {
			t.Parallel()
			got := GetCalculatorsToRun(config.AppConfig{Algo: tt.algo}, testFactory())
			if len(got) != len(tt.want) {
				t.Fatalf("got %d calculators, want %d", len(got), len(tt.want))
			}
			for i, sel := range got {
				if sel.Algorithm != tt.want[i] || sel.Calculator == nil {
					t.Errorf("selection %d = %+v, want %s", i, sel, tt.want[i])
				}
			}
		})
	}
}

func TestPrintExecutionConfig(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	PrintExecutionConfig(config.AppConfig{N: 1000, Timeout: time.Minute}, &buf)
	out := buf.String()
	for _, s := range []string{"--- Execution Configuration ---", "Calculating F(1000) with a timeout of 1m0s.", "logical processors"} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
}

func TestPrintExecutionMode(t *testing.T) {
	t.Parallel()

	all := GetCalculatorsToRun(config.AppConfig{Algo: "all"}, testFactory())
	tests := []struct {
		name     string
		selected []Selection
		parallel bool
		want     string
	}{
		{"single", all[:1], false, "Single calculation with the Linear algorithm."},
		{"sequential", all, false, "Sequential comparison of 2 algorithms."},
		{"parallel", all, true, "Parallel comparison of 2 algorithms."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			PrintExecutionMode(tt.selected, tt.parallel, &buf)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}
