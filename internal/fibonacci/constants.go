package fibonacci

const (
	// DefaultCheckInterval is the number of additions the linear sweep
	// performs between two cancellation checks and progress reports.
	// Checking the context on every iteration costs more than the addition
	// itself for small operands.
	DefaultCheckInterval = 4096

	// ProgressReportThreshold is the minimum change in progress (0.0 to 1.0)
	// before a new update is published. 1% keeps the progress bar smooth
	// without flooding observers.
	ProgressReportThreshold = 0.01

	// MaxFibUint64 is the largest index whose Fibonacci number fits in a
	// uint64: F(93) < 2^64 <= F(94).
	MaxFibUint64 = 93
)

// Algorithm names registered in the default factory.
const (
	// AlgoLinear selects the O(n) dynamic-programming sweep.
	AlgoLinear = "linear"
	// AlgoLogarithmic selects the O(log n) matrix exponentiation.
	AlgoLogarithmic = "logn"
)
