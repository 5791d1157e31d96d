package fibonacci

// Options configures a Fibonacci calculation.
type Options struct {
	// CheckInterval is the number of iterations of the linear sweep between
	// two cancellation checks. If 0, DefaultCheckInterval is used.
	CheckInterval int
}

// normalizeOptions returns a copy of opts with defaults filled in for zero
// values.
func normalizeOptions(opts Options) Options {
	normalized := opts
	if normalized.CheckInterval <= 0 {
		normalized.CheckInterval = DefaultCheckInterval
	}
	return normalized
}
