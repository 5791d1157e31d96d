// Package cli renders fibmeter's terminal output: the progress spinner while
// calculations run and the result summary afterwards.
package cli

import (
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/fibmeter/internal/fibonacci"
	"github.com/agbru/fibmeter/internal/metering"
	"github.com/agbru/fibmeter/internal/ui"
)

const (
	// TruncationLimit is the number of digits above which the value is
	// elided unless -v is given.
	TruncationLimit = 100
	// DisplayEdges is the number of leading and trailing digits kept when
	// the value is elided.
	DisplayEdges        = 25
	ProgressRefreshRate = 200 * time.Millisecond
	ProgressBarWidth    = 40
)

// FormatExecutionDuration prints microseconds below one millisecond,
// milliseconds below one second and time.Duration's form above.
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d == 0:
		return "< 1µs"
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return d.String()
	}
}

// FormatMemory prints the heap figures of r as "used MB / total MB".
func FormatMemory(r metering.Report) string {
	return fmt.Sprintf("%.2f MB / %.2f MB", r.UsedMB(), r.TotalMB())
}

// Spinner is the part of a terminal spinner DisplayProgress drives.
type Spinner interface {
	Start()
	Stop()
	UpdateSuffix(suffix string)
}

type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start()                     { rs.s.Start() }
func (rs *realSpinner) Stop()                      { rs.s.Stop() }
func (rs *realSpinner) UpdateSuffix(suffix string) { rs.s.Suffix = suffix }

// newSpinner is replaced in tests.
var newSpinner = func(options ...spinner.Option) Spinner {
	return &realSpinner{spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)}
}

// ProgressState holds the latest progress of each running calculator.
type ProgressState struct {
	progresses     []float64
	numCalculators int
}

func NewProgressState(numCalculators int) *ProgressState {
	return &ProgressState{
		progresses:     make([]float64, numCalculators),
		numCalculators: numCalculators,
	}
}

// Update records value for calculator index. Out-of-range indices are
// ignored.
func (ps *ProgressState) Update(index int, value float64) {
	if index >= 0 && index < len(ps.progresses) {
		ps.progresses[index] = value
	}
}

// CalculateAverage returns the mean progress over all calculators.
func (ps *ProgressState) CalculateAverage() float64 {
	if ps.numCalculators == 0 {
		return 0
	}
	var total float64
	for _, p := range ps.progresses {
		total += p
	}
	return total / float64(ps.numCalculators)
}

func progressBar(progress float64, length int) string {
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(length))
	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}

func progressLabel(numCalculators int) string {
	if numCalculators > 1 {
		return "Avg progress"
	}
	return "Progress"
}

// DisplayProgress animates a spinner with an averaged progress bar and ETA
// until progressChan is closed, then prints a final 100% line. It calls
// wg.Done on return. With no calculators it only drains the channel.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan fibonacci.ProgressUpdate, numCalculators int, out io.Writer) {
	defer wg.Done()
	if numCalculators <= 0 {
		for range progressChan {
		}
		return
	}

	state := NewProgressWithETA(numCalculators)
	label := progressLabel(numCalculators)
	s := newSpinner(spinner.WithWriter(out))
	s.Start()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.Stop()
				fmt.Fprintf(out, "%s: %s\n", label, FormatProgressBarWithETA(1.0, time.Nanosecond, ProgressBarWidth))
				return
			}
			state.UpdateWithETA(update.CalculatorIndex, update.Value)
		case <-ticker.C:
			s.UpdateSuffix(fmt.Sprintf(" %s: %s", label, FormatProgressBarWithETA(state.CalculateAverage(), state.GetETA(), ProgressBarWidth)))
		}
	}
}

// DisplayResult prints the size of result, then with details the meter
// report and digit count, then the value itself. Values longer than
// TruncationLimit digits are elided unless verbose is set.
func DisplayResult(result *big.Int, n uint64, report metering.Report, verbose, details bool, out io.Writer) {
	fmt.Fprintf(out, "Result binary size: %s%s%s bits.\n", ui.ColorCyan(), formatNumberString(strconv.Itoa(result.BitLen())), ui.ColorReset())

	digits := result.String()
	if details {
		fmt.Fprintf(out, "\n%s--- Detailed result analysis ---%s\n", ui.ColorBold(), ui.ColorReset())
		fmt.Fprintf(out, "Calculation time   : %s%s%s\n", ui.ColorGreen(), FormatExecutionDuration(report.Elapsed), ui.ColorReset())
		fmt.Fprintf(out, "Memory (heap)      : %s%s%s\n", ui.ColorGreen(), FormatMemory(report), ui.ColorReset())
		fmt.Fprintf(out, "Allocated          : %s%s%s bytes\n", ui.ColorCyan(), formatNumberString(strconv.FormatUint(report.Allocated, 10)), ui.ColorReset())
		fmt.Fprintf(out, "Number of digits   : %s%s%s\n", ui.ColorCyan(), formatNumberString(strconv.Itoa(len(digits))), ui.ColorReset())
		if len(digits) > 6 {
			fmt.Fprintf(out, "Scientific notation: %s%.6e%s\n", ui.ColorCyan(), new(big.Float).SetInt(result), ui.ColorReset())
		}
	}

	fmt.Fprintf(out, "\n%s--- Calculated value ---%s\n", ui.ColorBold(), ui.ColorReset())
	switch {
	case verbose:
		fmt.Fprintf(out, "F(%s%d%s) =\n%s%s%s\n", ui.ColorMagenta(), n, ui.ColorReset(), ui.ColorGreen(), formatNumberString(digits), ui.ColorReset())
	case len(digits) > TruncationLimit:
		fmt.Fprintf(out, "F(%s%d%s) (truncated) = %s%s...%s%s\n",
			ui.ColorMagenta(), n, ui.ColorReset(),
			ui.ColorGreen(), digits[:DisplayEdges], digits[len(digits)-DisplayEdges:], ui.ColorReset())
		fmt.Fprintf(out, "(Tip: use the %s-v%s option to display the full value)\n", ui.ColorYellow(), ui.ColorReset())
	default:
		fmt.Fprintf(out, "F(%s%d%s) = %s%s%s\n", ui.ColorMagenta(), n, ui.ColorReset(), ui.ColorGreen(), formatNumberString(digits), ui.ColorReset())
	}
}

// formatNumberString groups the digits of s by thousands with commas.
func formatNumberString(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}

	var b strings.Builder
	b.Grow(len(sign) + len(s) + (len(s)-1)/3)
	b.WriteString(sign)
	head := len(s) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(s[:head])
	for i := head; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
