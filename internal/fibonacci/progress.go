package fibonacci

// ProgressUpdate carries the progress of one calculation from a calculator to
// the user interface.
type ProgressUpdate struct {
	// CalculatorIndex identifies the calculation when several run at once.
	CalculatorIndex int
	// Value is the normalized progress, from 0.0 to 1.0.
	Value float64
}

// ProgressReporter is the callback core algorithms use to publish progress
// without knowing how it is consumed.
type ProgressReporter func(progress float64)

// powersOf4 holds 4^0 .. 4^63. bits.Len64 of a uint64 exponent never exceeds 64.
var powersOf4 [64]float64

func init() {
	powersOf4[0] = 1
	for i := 1; i < len(powersOf4); i++ {
		powersOf4[i] = powersOf4[i-1] * 4
	}
}

// CalcTotalWork estimates the total work of a bit-by-bit O(log n) loop with
// numBits steps. Each step squares operands roughly twice as long as the
// previous one, so the cost of step k is modeled as 4^k and the total is the
// geometric sum (4^numBits - 1) / 3.
func CalcTotalWork(numBits int) float64 {
	if numBits <= 0 {
		return 0
	}
	total := 0.0
	for _, w := range PrecomputePowers4(numBits) {
		total += w
	}
	return total
}

// PrecomputePowers4 returns the slice [4^0, 4^1, ..., 4^(numBits-1)].
// For numBits <= 64 the slice is backed by a shared table and must not be
// modified.
func PrecomputePowers4(numBits int) []float64 {
	if numBits <= 0 {
		return nil
	}
	if numBits <= len(powersOf4) {
		return powersOf4[:numBits]
	}
	powers := make([]float64, numBits)
	copy(powers, powersOf4[:])
	for i := len(powersOf4); i < numBits; i++ {
		powers[i] = powers[i-1] * 4
	}
	return powers
}

// ReportStepProgress accounts for one step of a bit loop and reports the new
// cumulative progress when it moved by at least ProgressReportThreshold, or
// on the first and last step.
//
// The loop index i counts down from numBits-1 to 0; the step it represents is
// numBits-1-i, so early steps are cheap and late steps dominate. The updated
// cumulative work is returned for the next call.
func ReportStepProgress(reporter ProgressReporter, lastReported *float64, totalWork, workDone float64, i, numBits int, powers []float64) float64 {
	done := workDone + powers[numBits-1-i]
	if totalWork <= 0 {
		return done
	}
	progress := done / totalWork
	if progress-*lastReported >= ProgressReportThreshold || i == 0 || i == numBits-1 {
		reporter(progress)
		*lastReported = progress
	}
	return done
}

// reportLinearProgress reports i/n for a linear sweep, throttled by
// ProgressReportThreshold.
func reportLinearProgress(reporter ProgressReporter, lastReported *float64, i, n uint64) {
	if n == 0 {
		return
	}
	progress := float64(i) / float64(n)
	if progress-*lastReported >= ProgressReportThreshold {
		reporter(progress)
		*lastReported = progress
	}
}
