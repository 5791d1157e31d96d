// Package orchestration runs the selected calculators under the meter and
// compares their results.
package orchestration

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"sort"
	"sync"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/agbru/fibmeter/internal/cli"
	"github.com/agbru/fibmeter/internal/config"
	apperrors "github.com/agbru/fibmeter/internal/errors"
	"github.com/agbru/fibmeter/internal/fibonacci"
	"github.com/agbru/fibmeter/internal/metering"
	"github.com/agbru/fibmeter/internal/ui"
)

// CalculationResult is the outcome of one metered calculation.
type CalculationResult struct {
	// Algorithm is the registered name, e.g. "logn".
	Algorithm string
	// Name is the calculator's display name.
	Name   string
	Result *big.Int
	Report metering.Report
	Err    error
}

// ProgressBufferMultiplier sizes the progress channel per calculator.
const ProgressBufferMultiplier = 5

// progressLogThreshold is the progress step between debug log lines.
const progressLogThreshold = 0.25

// observableCalculator is implemented by calculators built with
// fibonacci.NewCalculator.
type observableCalculator interface {
	CalculateWithObservers(ctx context.Context, subject *fibonacci.ProgressSubject, calcIndex int, n uint64, opts fibonacci.Options) (*big.Int, error)
}

var progressMetrics = fibonacci.NewMetricsObserver()

// ExecuteCalculations runs every selected calculator for cfg.N, each inside
// its own meter, and returns the results in selection order.
//
// Calculators run one at a time unless cfg.Parallel is set, so that each
// memory report belongs to a single calculation. A failing calculator does
// not stop the others. Progress is drawn to out unless cfg asks for quiet,
// JSON or classic output. The progress gauge is cleared first, so it only
// carries series of the current batch.
func ExecuteCalculations(ctx context.Context, selected []cli.Selection, cfg config.AppConfig, out io.Writer) []CalculationResult {
	results := make([]CalculationResult, len(selected))
	opts := cfg.ToCalculationOptions()
	progressMetrics.ResetMetrics()

	var (
		progressChan chan fibonacci.ProgressUpdate
		displayWg    sync.WaitGroup
	)
	if showProgress(cfg) {
		progressChan = make(chan fibonacci.ProgressUpdate, len(selected)*ProgressBufferMultiplier)
		displayWg.Add(1)
		go cli.DisplayProgress(&displayWg, progressChan, len(selected), out)
	}

	g, gctx := errgroup.WithContext(ctx)
	if !cfg.Parallel {
		g.SetLimit(1)
	}
	for i, sel := range selected {
		g.Go(func() error {
			var res *big.Int
			report, err := metering.Measure(sel.Algorithm, func() error {
				var err error
				res, err = calculate(gctx, sel.Calculator, progressChan, i, cfg.N, opts)
				return err
			})
			if err != nil {
				err = apperrors.CalculationError{Algorithm: sel.Algorithm, N: cfg.N, Cause: err}
			}
			results[i] = CalculationResult{
				Algorithm: sel.Algorithm,
				Name:      sel.Calculator.Name(),
				Result:    res,
				Report:    report,
				Err:       err,
			}
			return nil
		})
	}
	_ = g.Wait()

	if progressChan != nil {
		close(progressChan)
		displayWg.Wait()
	}
	return results
}

func showProgress(cfg config.AppConfig) bool {
	return !cfg.Quiet && !cfg.JSONOutput && !cfg.Classic
}

// calculate fans progress out to the display channel, the debug log and the
// progress gauge when calc supports observers.
func calculate(ctx context.Context, calc fibonacci.Calculator, progressChan chan<- fibonacci.ProgressUpdate, idx int, n uint64, opts fibonacci.Options) (*big.Int, error) {
	oc, ok := calc.(observableCalculator)
	if !ok {
		return calc.Calculate(ctx, progressChan, idx, n, opts)
	}
	subject := fibonacci.NewProgressSubject()
	if progressChan != nil {
		subject.Register(fibonacci.NewChannelObserver(progressChan))
	}
	subject.Register(fibonacci.NewLoggingObserver(log.Logger, progressLogThreshold))
	subject.Register(progressMetrics)
	return oc.CalculateWithObservers(ctx, subject, idx, n, opts)
}

// CheckConsistency returns an apperrors.MismatchError naming every
// successful algorithm when they did not all return the same value.
func CheckConsistency(results []CalculationResult, n uint64) error {
	var (
		first *big.Int
		names []string
		diff  bool
	)
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		names = append(names, res.Algorithm)
		if first == nil {
			first = res.Result
		} else if res.Result.Cmp(first) != 0 {
			diff = true
		}
	}
	if diff {
		return apperrors.MismatchError{N: n, Algorithms: names}
	}
	return nil
}

// Best returns the fastest successful result, or nil if all failed.
func Best(results []CalculationResult) *CalculationResult {
	var best *CalculationResult
	for i := range results {
		if results[i].Err != nil {
			continue
		}
		if best == nil || results[i].Report.Elapsed < best.Report.Elapsed {
			best = &results[i]
		}
	}
	return best
}

// FirstError returns the first error in results.
func FirstError(results []CalculationResult) error {
	for _, res := range results {
		if res.Err != nil {
			return res.Err
		}
	}
	return nil
}

// AnalyzeComparisonResults prints a summary table sorted by duration,
// checks that every successful algorithm agrees, and on success renders the
// fastest result with output. It returns the process exit code.
func AnalyzeComparisonResults(results []CalculationResult, cfg config.AppConfig, output cli.OutputConfig, out io.Writer) int {
	sorted := make([]CalculationResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		if (sorted[i].Err == nil) != (sorted[j].Err == nil) {
			return sorted[i].Err == nil
		}
		return sorted[i].Report.Elapsed < sorted[j].Report.Elapsed
	})

	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "%sAlgorithm%s\t%sDuration%s\t%sMemory%s\t%sStatus%s\n",
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset(),
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset())
	for _, res := range sorted {
		status := fmt.Sprintf("%s✅ Success%s", ui.ColorGreen(), ui.ColorReset())
		if res.Err != nil {
			status = fmt.Sprintf("%s❌ Failure (%v)%s", ui.ColorRed(), res.Err, ui.ColorReset())
		}
		fmt.Fprintf(tw, "%s%s%s\t%s%s%s\t%s\t%s\n",
			ui.ColorBlue(), res.Name, ui.ColorReset(),
			ui.ColorYellow(), cli.FormatExecutionDuration(res.Report.Elapsed), ui.ColorReset(),
			cli.FormatMemory(res.Report),
			status)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
	}

	best := Best(results)
	if best == nil {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No algorithm could complete the calculation.\n")
		return apperrors.HandleCalculationError(FirstError(results), 0, out, ui.ColorProvider{})
	}
	if err := CheckConsistency(results, cfg.N); err != nil {
		fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! An inconsistency was detected between the results of the algorithms.\n")
		return apperrors.HandleCalculationError(err, 0, out, ui.ColorProvider{})
	}

	fmt.Fprintf(out, "\nGlobal Status: Success. All valid results are consistent.\n")
	if err := cli.DisplayResultWithConfig(out, best.Result, cfg.N, best.Report, best.Algorithm, output); err != nil {
		fmt.Fprintf(out, "Error saving result: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}
