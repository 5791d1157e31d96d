package server

import (
	"math/big"

	"github.com/agbru/fibmeter/internal/metering"
)

// Response is the JSON body of /calculate and one entry of /compare.
type Response struct {
	N         uint64 `json:"n"`
	Algorithm string `json:"algorithm"`
	Name      string `json:"name,omitempty"`
	// Result is encoded as a JSON number of arbitrary length.
	Result     *big.Int         `json:"result,omitempty"`
	Duration   string           `json:"duration"`
	DurationMS float64          `json:"duration_ms"`
	Memory     *metering.Report `json:"memory,omitempty"`
	RequestID  string           `json:"request_id,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// CompareResponse is the JSON body of /compare. Consistent only speaks for
// the Compared algorithms that succeeded; Partial is set when some failed.
type CompareResponse struct {
	N          uint64     `json:"n"`
	Consistent bool       `json:"consistent"`
	Compared   int        `json:"compared"`
	Partial    bool       `json:"partial,omitempty"`
	Results    []Response `json:"results"`
	RequestID  string     `json:"request_id,omitempty"`
}

// ErrorResponse is the JSON body of every error status.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// CalculateParseError is a rejected query parameter.
type CalculateParseError struct {
	Message    string
	StatusCode int
}

func (e CalculateParseError) Error() string {
	return e.Message
}
