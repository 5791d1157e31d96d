package orchestration

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/big"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/agbru/fibmeter/internal/cli"
	"github.com/agbru/fibmeter/internal/config"
	apperrors "github.com/agbru/fibmeter/internal/errors"
	"github.com/agbru/fibmeter/internal/fibonacci"
	"github.com/agbru/fibmeter/internal/fibonacci/mocks"
	"github.com/agbru/fibmeter/internal/metering"
	"github.com/agbru/fibmeter/internal/ui"
)

func TestMain(m *testing.M) {
	ui.SetCurrentTheme(ui.NoColorTheme)
	os.Exit(m.Run())
}

func realSelections(t *testing.T) []cli.Selection {
	t.Helper()
	return cli.GetCalculatorsToRun(config.AppConfig{Algo: config.AlgoAll}, fibonacci.NewDefaultFactory())
}

func TestExecuteCalculationsRealAlgorithms(t *testing.T) {
	t.Parallel()

	selected := realSelections(t)
	for _, parallel := range []bool{false, true} {
		cfg := config.AppConfig{N: 1000, Quiet: true, Parallel: parallel}
		results := ExecuteCalculations(context.Background(), selected, cfg, io.Discard)
		if len(results) != len(selected) {
			t.Fatalf("got %d results, want %d", len(results), len(selected))
		}
		want := fibonacci.Linear(1000)
		for i, res := range results {
			if res.Err != nil {
				t.Fatalf("%s: %v", res.Algorithm, res.Err)
			}
			if res.Algorithm != selected[i].Algorithm {
				t.Errorf("result %d algorithm = %s, want %s", i, res.Algorithm, selected[i].Algorithm)
			}
			if res.Result.Cmp(want) != 0 {
				t.Errorf("%s: wrong F(1000)", res.Algorithm)
			}
			if res.Report.HeapSys == 0 {
				t.Errorf("%s: empty memory report", res.Algorithm)
			}
		}
		if err := CheckConsistency(results, 1000); err != nil {
			t.Errorf("CheckConsistency() = %v", err)
		}
	}
}

// progressSeries returns the fibmeter_calculation_progress gauge by
// calculator index.
func progressSeries(t *testing.T) map[string]float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	series := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "fibmeter_calculation_progress" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "calculator_index" {
					series[l.GetValue()] = m.GetGauge().GetValue()
				}
			}
		}
	}
	return series
}

// Not parallel: the progress gauge is process-global.
func TestExecuteCalculationsResetsProgressGauge(t *testing.T) {
	progressMetrics.Update(97, 0.3)
	if got := progressSeries(t); got["97"] != 0.3 {
		t.Fatalf("stale series not recorded: %v", got)
	}

	selected := realSelections(t)[:1]
	results := ExecuteCalculations(context.Background(), selected, config.AppConfig{N: 500, Quiet: true}, io.Discard)
	if results[0].Err != nil {
		t.Fatal(results[0].Err)
	}

	series := progressSeries(t)
	if _, ok := series["97"]; ok {
		t.Errorf("series from a previous batch survived: %v", series)
	}
	if series["0"] != 1.0 {
		t.Errorf("calculator 0 progress = %v, want 1", series["0"])
	}
}

func TestExecuteCalculationsWithProgressDisplay(t *testing.T) {
	t.Parallel()
	results := ExecuteCalculations(context.Background(), realSelections(t), config.AppConfig{N: 20000, CheckInterval: 128}, io.Discard)
	if err := FirstError(results); err != nil {
		t.Fatal(err)
	}
}

func TestExecuteCalculationsPassesOptions(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	calc := mocks.NewMockCalculator(ctrl)
	calc.EXPECT().Name().Return("Mock").AnyTimes()
	calc.EXPECT().
		Calculate(gomock.Any(), gomock.Any(), 0, uint64(10), fibonacci.Options{CheckInterval: 7}).
		Return(big.NewInt(55), nil)

	cfg := config.AppConfig{N: 10, CheckInterval: 7, JSONOutput: true}
	results := ExecuteCalculations(context.Background(), []cli.Selection{{Algorithm: "mock", Calculator: calc}}, cfg, io.Discard)
	if results[0].Err != nil || results[0].Result.Int64() != 55 || results[0].Name != "Mock" {
		t.Errorf("result = %+v", results[0])
	}
}

func TestExecuteCalculationsWrapsFailures(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	calc := mocks.NewMockCalculator(ctrl)
	calc.EXPECT().Name().Return("Mock").AnyTimes()
	calc.EXPECT().
		Calculate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, context.DeadlineExceeded)

	results := ExecuteCalculations(context.Background(), []cli.Selection{{Algorithm: "mock", Calculator: calc}}, config.AppConfig{N: 10, Quiet: true}, io.Discard)
	var calcErr apperrors.CalculationError
	if !errors.As(results[0].Err, &calcErr) || calcErr.Algorithm != "mock" {
		t.Fatalf("error = %v, want a CalculationError", results[0].Err)
	}
	if got := apperrors.ExitCode(results[0].Err); got != apperrors.ExitErrorTimeout {
		t.Errorf("ExitCode() = %d, want %d", got, apperrors.ExitErrorTimeout)
	}
}

// concurrencyProbe records the highest number of calculators running at once.
type concurrencyProbe struct {
	running, peak atomic.Int32
}

func (p *concurrencyProbe) calculator(wait time.Duration) *fibonacci.MockCalculator {
	return &fibonacci.MockCalculator{Fn: func(ctx context.Context, n uint64) (*big.Int, error) {
		cur := p.running.Add(1)
		defer p.running.Add(-1)
		for {
			peak := p.peak.Load()
			if cur <= peak || p.peak.CompareAndSwap(peak, cur) {
				break
			}
		}
		time.Sleep(wait)
		return big.NewInt(1), nil
	}}
}

func TestExecuteCalculationsConcurrency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		parallel bool
		check    func(peak int32) bool
	}{
		{"sequential by default", false, func(peak int32) bool { return peak == 1 }},
		{"parallel", true, func(peak int32) bool { return peak > 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			probe := &concurrencyProbe{}
			var selected []cli.Selection
			for range 3 {
				selected = append(selected, cli.Selection{Algorithm: "probe", Calculator: probe.calculator(50 * time.Millisecond)})
			}
			ExecuteCalculations(context.Background(), selected, config.AppConfig{Quiet: true, Parallel: tt.parallel}, io.Discard)
			if peak := probe.peak.Load(); !tt.check(peak) {
				t.Errorf("peak concurrency = %d", peak)
			}
		})
	}
}

func TestCheckConsistency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		results  []CalculationResult
		mismatch bool
	}{
		{"agree", []CalculationResult{{Algorithm: "a", Result: big.NewInt(5)}, {Algorithm: "b", Result: big.NewInt(5)}}, false},
		{"disagree", []CalculationResult{{Algorithm: "a", Result: big.NewInt(5)}, {Algorithm: "b", Result: big.NewInt(6)}}, true},
		{"failures ignored", []CalculationResult{{Algorithm: "a", Result: big.NewInt(5)}, {Algorithm: "b", Err: errors.New("x")}}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := CheckConsistency(tt.results, 5)
			var mismatch apperrors.MismatchError
			if got := errors.As(err, &mismatch); got != tt.mismatch {
				t.Fatalf("CheckConsistency() = %v, mismatch want %v", err, tt.mismatch)
			}
			if tt.mismatch && strings.Join(mismatch.Algorithms, ",") != "a,b" {
				t.Errorf("algorithms = %v", mismatch.Algorithms)
			}
		})
	}
}

func TestBest(t *testing.T) {
	t.Parallel()
	results := []CalculationResult{
		{Algorithm: "slow", Result: big.NewInt(1), Report: metering.Report{Elapsed: time.Second}},
		{Algorithm: "failed", Err: errors.New("x")},
		{Algorithm: "fast", Result: big.NewInt(1), Report: metering.Report{Elapsed: time.Millisecond}},
	}
	if best := Best(results); best == nil || best.Algorithm != "fast" {
		t.Errorf("Best() = %+v", best)
	}
	if Best(results[1:2]) != nil {
		t.Error("Best() of failures should be nil")
	}
}

func TestAnalyzeComparisonResults(t *testing.T) {
	t.Parallel()

	ok := func(name string, v int64) CalculationResult {
		return CalculationResult{Algorithm: name, Name: name, Result: big.NewInt(v), Report: metering.Report{Elapsed: time.Millisecond}}
	}
	failed := func(name string, err error) CalculationResult {
		return CalculationResult{Algorithm: name, Name: name, Err: err}
	}

	tests := []struct {
		name     string
		results  []CalculationResult
		wantCode int
		wantOut  []string
	}{
		{"all success", []CalculationResult{ok("A", 5), ok("B", 5)}, apperrors.ExitSuccess, []string{"Global Status: Success", "F(5) = 5"}},
		{"mismatch", []CalculationResult{ok("A", 5), ok("B", 6)}, apperrors.ExitErrorMismatch, []string{"CRITICAL ERROR", "Status: Mismatch"}},
		{"all failure", []CalculationResult{failed("A", errors.New("fail")), failed("B", errors.New("fail"))}, apperrors.ExitErrorGeneric, []string{"No algorithm could complete"}},
		{"timeout", []CalculationResult{failed("A", context.DeadlineExceeded)}, apperrors.ExitErrorTimeout, []string{"Timeout"}},
		{"mixed", []CalculationResult{ok("A", 5), failed("B", errors.New("fail"))}, apperrors.ExitSuccess, []string{"❌ Failure (fail)", "✅ Success"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			code := AnalyzeComparisonResults(tt.results, config.AppConfig{N: 5}, cli.OutputConfig{}, &buf)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", code, tt.wantCode)
			}
			out := buf.String()
			for _, s := range append(tt.wantOut, "--- Comparison Summary ---", "Memory") {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestAnalyzeComparisonResultsKeepsOrder(t *testing.T) {
	t.Parallel()
	results := []CalculationResult{
		{Algorithm: "slow", Name: "slow", Result: big.NewInt(1), Report: metering.Report{Elapsed: time.Second}},
		{Algorithm: "fast", Name: "fast", Result: big.NewInt(1), Report: metering.Report{Elapsed: time.Millisecond}},
	}
	var buf bytes.Buffer
	AnalyzeComparisonResults(results, config.AppConfig{N: 1}, cli.OutputConfig{Quiet: true}, &buf)
	out := buf.String()
	if strings.Index(out, "fast") > strings.Index(out, "slow") {
		t.Errorf("table should be sorted by duration:\n%s", out)
	}
	if results[0].Algorithm != "slow" {
		t.Error("caller's slice was reordered")
	}
}
