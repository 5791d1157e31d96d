// Package config builds the fibmeter configuration from, in increasing order
// of precedence, built-in defaults, a TOML file, FIBMETER_* environment
// variables and the command line.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/agbru/fibmeter/internal/errors"
	"github.com/agbru/fibmeter/internal/fibonacci"
)

// EnvPrefix prefixes every environment variable read by fibmeter.
const EnvPrefix = "FIBMETER_"

// Defaults.
const (
	DefaultN        int64 = 1000
	DefaultChoice         = 1
	DefaultTimeout        = 5 * time.Minute
	DefaultPort           = "8080"
	DefaultLogLevel       = "warn"
	// AlgoAll runs every registered algorithm and compares the results.
	AlgoAll = "all"
)

// AppConfig is the resolved configuration of one run.
type AppConfig struct {
	// N is the Fibonacci index to compute.
	N    uint64
	Algo string

	Timeout time.Duration
	// Parallel runs the algorithms of a comparison concurrently. Memory
	// figures then overlap between algorithms.
	Parallel bool
	// CheckInterval is the cancellation granularity of the linear sweep.
	CheckInterval int

	Verbose    bool
	Details    bool
	JSONOutput bool
	Quiet      bool
	HexOutput  bool
	NoColor    bool
	OutputFile string
	// Classic prints the three-part report of the original command-line
	// tool: the choice, the meter report and the full value.
	Classic bool

	ServerMode bool
	Port       string

	ConfigFile string
	LogLevel   string

	// n is the signed index as read from any source, checked by resolveN.
	n int64
}

// ToCalculationOptions returns the calculator options for c.
func (c AppConfig) ToCalculationOptions() fibonacci.Options {
	return fibonacci.Options{CheckInterval: c.CheckInterval}
}

// Validate checks c against the registered algorithm names.
func (c AppConfig) Validate(availableAlgos []string) error {
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	if c.CheckInterval < 0 {
		return apperrors.NewConfigError("check interval cannot be negative: %d", c.CheckInterval)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return apperrors.ConfigError{Message: fmt.Sprintf("invalid log level %q", c.LogLevel), Cause: err}
	}
	if c.Algo == AlgoAll {
		return nil
	}
	for _, a := range availableAlgos {
		if a == c.Algo {
			return nil
		}
	}
	return apperrors.NewConfigError("unrecognized algorithm: '%s'. Valid algorithms are: '%s' or [%s]", c.Algo, AlgoAll, strings.Join(availableAlgos, ", "))
}

// ParseConfig parses args, the command line without the program name.
//
// Up to two positional arguments are accepted, as in `fibmeter 5000 2`: the
// index and the numeric algorithm choice (1 linear, 2 logn). They cannot be
// combined with -n or -algo.
//
// A negative index from any source yields an apperrors.ValidationError
// wrapping fibonacci.ErrNegativeIndex. Other invalid settings yield an
// apperrors.ConfigError, after the usage text has been written to
// errorWriter.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableAlgos []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)

	config := AppConfig{}
	defaultAlgo, _ := fibonacci.AlgorithmForChoice(DefaultChoice)
	algoHelp := fmt.Sprintf("Algorithm: '%s' or one of [%s].", AlgoAll, strings.Join(availableAlgos, ", "))

	fs.Int64Var(&config.n, "n", DefaultN, "Index n of the Fibonacci number to calculate.")
	fs.StringVar(&config.Algo, "algo", defaultAlgo, algoHelp)
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time for the calculation.")
	fs.BoolVar(&config.Parallel, "parallel", false, "Run the algorithms of a comparison concurrently.")
	fs.IntVar(&config.CheckInterval, "check-interval", fibonacci.DefaultCheckInterval, "Iterations of the linear sweep between cancellation checks.")
	fs.BoolVar(&config.Verbose, "v", false, "Display the full value of the result.")
	fs.BoolVar(&config.Details, "d", false, "Display result metadata and memory details.")
	fs.BoolVar(&config.Details, "details", false, "Alias for -d.")
	fs.BoolVar(&config.JSONOutput, "json", false, "Output results in JSON format.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Print only the value.")
	fs.BoolVar(&config.Quiet, "q", false, "Alias for -quiet.")
	fs.BoolVar(&config.HexOutput, "hex", false, "Also display the result in hexadecimal.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR).")
	fs.StringVar(&config.OutputFile, "output", "", "Write the result to this file.")
	fs.StringVar(&config.OutputFile, "o", "", "Alias for -output.")
	fs.BoolVar(&config.Classic, "classic", false, "Print the choice, time, memory and full value only.")
	fs.BoolVar(&config.ServerMode, "server", false, "Start in HTTP server mode.")
	fs.StringVar(&config.Port, "port", DefaultPort, "Port to listen on in server mode.")
	fs.StringVar(&config.ConfigFile, "config", "", "Path to a TOML configuration file.")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level: trace, debug, info, warn, error.")

	setCustomUsage(fs)

	if err := fs.Parse(separateNegativeIndex(fs, args)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return AppConfig{}, err
		}
		return AppConfig{}, apperrors.ConfigError{Message: "invalid arguments", Cause: err}
	}

	fail := func(err error) (AppConfig, error) {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		return AppConfig{}, err
	}

	if !isFlagSet(fs, "config") {
		config.ConfigFile = getEnvString("CONFIG", config.ConfigFile)
	}
	if config.ConfigFile != "" {
		file, err := LoadFile(config.ConfigFile)
		if err != nil {
			return fail(err)
		}
		file.apply(&config, fs)
	}
	applyEnvOverrides(&config, fs)

	if err := applyPositional(&config, fs); err != nil {
		return fail(err)
	}

	n, err := fibonacci.Index(config.n)
	if err != nil {
		return AppConfig{}, apperrors.ValidationError{
			Field:   "n",
			Message: fmt.Sprintf("index must be non-negative, got %d", config.n),
			Value:   config.n,
			Cause:   err,
		}
	}
	config.N = n

	config.Algo = strings.ToLower(config.Algo)
	config.LogLevel = strings.ToLower(config.LogLevel)
	if err := config.Validate(availableAlgos); err != nil {
		return fail(err)
	}
	return config, nil
}

// applyPositional reads `[n] [choice]` from the remaining arguments.
func applyPositional(config *AppConfig, fs *flag.FlagSet) error {
	rest := fs.Args()
	if len(rest) == 0 {
		return nil
	}
	if len(rest) > 2 {
		return apperrors.NewConfigError("too many arguments: %s", strings.Join(rest, " "))
	}

	if isFlagSet(fs, "n") {
		return apperrors.NewConfigError("index given both as -n and as an argument")
	}
	n, err := strconv.ParseInt(rest[0], 10, 64)
	if err != nil {
		return apperrors.ValidationError{Field: "n", Message: fmt.Sprintf("not an integer: %q", rest[0]), Value: rest[0], Cause: err}
	}
	config.n = n

	if len(rest) == 2 {
		if isFlagSet(fs, "algo") {
			return apperrors.NewConfigError("algorithm given both as -algo and as an argument")
		}
		choice, err := strconv.Atoi(rest[1])
		if err != nil {
			return apperrors.ValidationError{Field: "choice", Message: fmt.Sprintf("not an integer: %q", rest[1]), Value: rest[1], Cause: err}
		}
		algo, err := fibonacci.AlgorithmForChoice(choice)
		if err != nil {
			return apperrors.ValidationError{Field: "choice", Message: err.Error(), Value: choice, Cause: err}
		}
		config.Algo = algo
	}
	return nil
}

// separateNegativeIndex inserts "--" before a negative integer found where
// the flag parser expects a flag, so that `fibmeter -5 2` reaches the index
// validation instead of failing as an unknown flag.
func separateNegativeIndex(fs *flag.FlagSet, args []string) []string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" || !strings.HasPrefix(arg, "-") || arg == "-" {
			return args
		}
		if _, err := strconv.ParseInt(arg, 10, 64); err == nil {
			out := make([]string, 0, len(args)+1)
			out = append(out, args[:i]...)
			out = append(out, "--")
			return append(out, args[i:]...)
		}
		name := strings.TrimLeft(arg, "-")
		if strings.Contains(name, "=") {
			continue
		}
		if f := fs.Lookup(name); f != nil && !isBoolFlag(f) {
			i++
		}
	}
	return args
}

func isBoolFlag(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

// IsHelp reports whether err is the result of -h or -help.
func IsHelp(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
