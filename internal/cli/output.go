package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/agbru/fibmeter/internal/fibonacci"
	"github.com/agbru/fibmeter/internal/metering"
	"github.com/agbru/fibmeter/internal/ui"
)

// hexEdges is the number of leading and trailing hex digits kept when a
// long hexadecimal value is elided.
const hexEdges = 40

// OutputConfig selects how a result is rendered.
type OutputConfig struct {
	// OutputFile, when set, also saves the result to that path.
	OutputFile string
	HexOutput  bool
	// Quiet prints the bare value only.
	Quiet   bool
	Verbose bool
	Details bool
}

// JSONResult is the -json rendering of one calculation.
type JSONResult struct {
	N          uint64          `json:"n"`
	Algorithm  string          `json:"algorithm"`
	Name       string          `json:"name"`
	Result     string          `json:"result,omitempty"`
	Hex        string          `json:"hex,omitempty"`
	DurationMS float64         `json:"duration_ms"`
	Memory     metering.Report `json:"memory"`
	Error      string          `json:"error,omitempty"`
}

// NewJSONResult builds the JSON rendering of a calculation. result is
// ignored when err is non-nil.
func NewJSONResult(n uint64, algorithm, name string, result *big.Int, report metering.Report, hex bool, err error) JSONResult {
	r := JSONResult{
		N:          n,
		Algorithm:  algorithm,
		Name:       name,
		DurationMS: float64(report.Elapsed) / float64(time.Millisecond),
		Memory:     report,
	}
	switch {
	case err != nil:
		r.Error = err.Error()
	case result != nil:
		r.Result = result.String()
		if hex {
			r.Hex = "0x" + result.Text(16)
		}
	}
	return r
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteResultToFile saves result with a commented header to
// config.OutputFile, creating parent directories as needed. It does nothing
// when no file is configured.
func WriteResultToFile(result *big.Int, n uint64, report metering.Report, algo string, config OutputConfig) (err error) {
	if config.OutputFile == "" {
		return nil
	}
	if dir := filepath.Dir(config.OutputFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	fmt.Fprintf(f, "# Fibonacci Calculation Result\n")
	fmt.Fprintf(f, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(f, "# Algorithm: %s\n", algo)
	fmt.Fprintf(f, "# Duration: %s\n", report.Elapsed)
	fmt.Fprintf(f, "# Memory: %s\n", FormatMemory(report))
	fmt.Fprintf(f, "# N: %d\n", n)
	fmt.Fprintf(f, "# Bits: %d\n", result.BitLen())
	fmt.Fprintf(f, "# Digits: %d\n\n", len(result.String()))

	if config.HexOutput {
		_, err = fmt.Fprintf(f, "F(%d) [hex] =\n0x%s\n", n, result.Text(16))
	} else {
		_, err = fmt.Fprintf(f, "F(%d) =\n%s\n", n, result.String())
	}
	return err
}

// FormatQuietResult returns the bare decimal value, or 0x-prefixed hex.
func FormatQuietResult(result *big.Int, hexOutput bool) string {
	if hexOutput {
		return "0x" + result.Text(16)
	}
	return result.String()
}

func DisplayQuietResult(out io.Writer, result *big.Int, hexOutput bool) {
	fmt.Fprintln(out, FormatQuietResult(result, hexOutput))
}

// DisplayClassicResult prints the three-part report of the first fibmeter
// releases: the numeric choice, the meter report and the full value.
// Algorithms without a numeric choice are shown by name.
func DisplayClassicResult(out io.Writer, algo string, report metering.Report, result *big.Int) {
	if choice := fibonacci.ChoiceForAlgorithm(algo); choice > 0 {
		fmt.Fprintf(out, "Choice: %d\n", choice)
	} else {
		fmt.Fprintf(out, "Choice: %s\n", algo)
	}
	fmt.Fprintf(out, "%s\n%s\n", report, result)
}

// DisplayResultWithConfig renders result according to config and saves it
// when an output file is configured.
func DisplayResultWithConfig(out io.Writer, result *big.Int, n uint64, report metering.Report, algo string, config OutputConfig) error {
	if config.Quiet {
		DisplayQuietResult(out, result, config.HexOutput)
	} else {
		DisplayResult(result, n, report, config.Verbose, config.Details, out)
		if config.HexOutput {
			hex := result.Text(16)
			fmt.Fprintf(out, "\n%sHexadecimal format:%s\n", ui.ColorBold(), ui.ColorReset())
			if len(hex) > 2*hexEdges+20 && !config.Verbose {
				fmt.Fprintf(out, "F(%d) [hex] = %s0x%s...%s%s\n", n, ui.ColorGreen(), hex[:hexEdges], hex[len(hex)-hexEdges:], ui.ColorReset())
			} else {
				fmt.Fprintf(out, "F(%d) [hex] = %s0x%s%s\n", n, ui.ColorGreen(), hex, ui.ColorReset())
			}
		}
	}

	if config.OutputFile == "" {
		return nil
	}
	if err := WriteResultToFile(result, n, report, algo, config); err != nil {
		return err
	}
	if !config.Quiet {
		fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n", ui.ColorGreen(), ui.ColorCyan(), config.OutputFile, ui.ColorReset())
	}
	return nil
}
