package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/fibmeter/internal/errors"
	"github.com/agbru/fibmeter/internal/fibonacci"
	"github.com/agbru/fibmeter/internal/logging"
	"github.com/agbru/fibmeter/internal/service"
)

// DefaultAlgorithm is used by /calculate when algo is omitted.
const DefaultAlgorithm = fibonacci.AlgoLogarithmic

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, r, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, r, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, map[string]any{
		"algorithms": s.service.Algorithms(),
	})
}

// handleCalculate serves GET /calculate?n=<n>&algo=<name>.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, r, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	n, err := parseIndex(r)
	if err != nil {
		s.writeParseError(w, r, err)
		return
	}
	algo := strings.ToLower(r.URL.Query().Get("algo"))
	if algo == "" {
		algo = DefaultAlgorithm
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	res, err := s.service.Calculate(ctx, algo, n)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	resp := buildResponse(res)
	resp.RequestID = RequestIDFromContext(r.Context())
	s.writeJSONResponse(w, http.StatusOK, resp)
}

// handleCompare serves GET /compare?n=<n>. A disagreement between
// algorithms is reported with consistent=false and a 500 status.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, r, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	n, err := parseIndex(r)
	if err != nil {
		s.writeParseError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	results, err := s.service.Compare(ctx, n)
	var mismatch apperrors.MismatchError
	if err != nil && !errors.As(err, &mismatch) {
		s.writeServiceError(w, r, err)
		return
	}

	resp := CompareResponse{
		N:          n,
		Consistent: err == nil,
		Results:    make([]Response, len(results)),
		RequestID:  RequestIDFromContext(r.Context()),
	}
	for i, res := range results {
		resp.Results[i] = buildResponse(res)
		if res.Err == nil {
			resp.Compared++
		}
	}
	resp.Partial = resp.Compared < len(results)
	status := http.StatusOK
	if !resp.Consistent {
		s.logger.Error("algorithms disagree", err, logging.Uint64("n", n))
		status = http.StatusInternalServerError
	}
	s.writeJSONResponse(w, status, resp)
}

// parseIndex reads the n query parameter. Negative values are rejected with
// fibonacci.ErrNegativeIndex's message.
func parseIndex(r *http.Request) (uint64, error) {
	raw := r.URL.Query().Get("n")
	if raw == "" {
		return 0, CalculateParseError{Message: "Missing 'n' parameter", StatusCode: http.StatusBadRequest}
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, CalculateParseError{Message: "Invalid 'n' parameter: must be an integer", StatusCode: http.StatusBadRequest}
	}
	n, err := fibonacci.Index(v)
	if err != nil {
		return 0, CalculateParseError{Message: "Invalid 'n' parameter: " + err.Error(), StatusCode: http.StatusBadRequest}
	}
	return n, nil
}

func buildResponse(res service.Result) Response {
	report := res.Report
	resp := Response{
		N:          res.N,
		Algorithm:  res.Algorithm,
		Name:       res.Name,
		Duration:   report.Elapsed.String(),
		DurationMS: float64(report.Elapsed) / float64(time.Millisecond),
		Memory:     &report,
	}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	} else {
		resp.Result = res.Value
	}
	return resp
}

func (s *Server) writeParseError(w http.ResponseWriter, r *http.Request, err error) {
	var parseErr CalculateParseError
	if errors.As(err, &parseErr) {
		s.writeErrorResponse(w, r, parseErr.StatusCode, parseErr.Message)
		return
	}
	s.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
}

// writeServiceError maps service failures to HTTP statuses: limits and
// unknown algorithms are client errors, an expired deadline is a gateway
// timeout, anything else is internal.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var unknown *fibonacci.UnknownCalculatorError
	switch {
	case errors.Is(err, service.ErrMaxValueExceeded):
		s.writeErrorResponse(w, r, http.StatusBadRequest,
			fmt.Sprintf("Value of 'n' exceeds maximum allowed (%d).", s.securityConfig.MaxNValue))
	case errors.As(err, &unknown):
		s.writeErrorResponse(w, r, http.StatusBadRequest,
			fmt.Sprintf("%v. Available algorithms: %s", err, strings.Join(s.service.Algorithms(), ", ")))
	case errors.Is(err, context.DeadlineExceeded):
		s.writeErrorResponse(w, r, http.StatusGatewayTimeout, err.Error())
	default:
		s.logger.Error("calculation failed", err, logging.String("request_id", RequestIDFromContext(r.Context())))
		s.writeErrorResponse(w, r, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", err)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	s.writeJSONResponse(w, statusCode, ErrorResponse{
		Error:     http.StatusText(statusCode),
		Message:   message,
		RequestID: RequestIDFromContext(r.Context()),
	})
}
