package config

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	apperrors "github.com/agbru/fibmeter/internal/errors"
	"github.com/agbru/fibmeter/internal/fibonacci"
)

var availableAlgos = []string{"linear", "logn"}

func writeTOML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fibmeter.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseConfig("fibmeter", nil, io.Discard, availableAlgos)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.N != 1000 {
			t.Errorf("N = %d, want 1000", cfg.N)
		}
		if cfg.Algo != "linear" {
			t.Errorf("Algo = %q, want linear", cfg.Algo)
		}
		if cfg.Timeout != DefaultTimeout {
			t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
		}
		if cfg.LogLevel != DefaultLogLevel {
			t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, DefaultLogLevel)
		}
		if cfg.ToCalculationOptions().CheckInterval != fibonacci.DefaultCheckInterval {
			t.Errorf("CheckInterval = %d", cfg.CheckInterval)
		}
	})

	t.Run("flags", func(t *testing.T) {
		t.Parallel()
		args := []string{
			"-n", "100",
			"-algo", "LOGN",
			"-v", "-d", "-hex", "-parallel", "-classic",
			"-timeout", "10s",
			"-check-interval", "64",
			"-server", "-port", "9090",
			"-o", "out.txt",
			"-log-level", "DEBUG",
		}
		cfg, err := ParseConfig("fibmeter", args, io.Discard, availableAlgos)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.N != 100 || cfg.Algo != "logn" {
			t.Errorf("N, Algo = %d, %q", cfg.N, cfg.Algo)
		}
		if !cfg.Verbose || !cfg.Details || !cfg.HexOutput || !cfg.Parallel || !cfg.Classic || !cfg.ServerMode {
			t.Errorf("boolean flags not applied: %+v", cfg)
		}
		if cfg.Timeout != 10*time.Second || cfg.CheckInterval != 64 {
			t.Errorf("Timeout, CheckInterval = %v, %d", cfg.Timeout, cfg.CheckInterval)
		}
		if cfg.Port != "9090" || cfg.OutputFile != "out.txt" || cfg.LogLevel != "debug" {
			t.Errorf("Port, OutputFile, LogLevel = %q, %q, %q", cfg.Port, cfg.OutputFile, cfg.LogLevel)
		}
	})

	t.Run("positional arguments", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseConfig("fibmeter", []string{"5000", "2"}, io.Discard, availableAlgos)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.N != 5000 || cfg.Algo != "logn" {
			t.Errorf("N, Algo = %d, %q, want 5000, logn", cfg.N, cfg.Algo)
		}

		cfg, err = ParseConfig("fibmeter", []string{"-q", "42"}, io.Discard, availableAlgos)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.N != 42 || cfg.Algo != "linear" || !cfg.Quiet {
			t.Errorf("cfg = %+v", cfg)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			name     string
			args     []string
			exitCode int
		}{
			{"unknown algorithm", []string{"-algo", "fast"}, apperrors.ExitErrorConfig},
			{"zero timeout", []string{"-timeout", "0s"}, apperrors.ExitErrorConfig},
			{"negative check interval", []string{"-check-interval", "-1"}, apperrors.ExitErrorConfig},
			{"bad log level", []string{"-log-level", "loud"}, apperrors.ExitErrorConfig},
			{"too many arguments", []string{"1", "2", "3"}, apperrors.ExitErrorConfig},
			{"n twice", []string{"-n", "5", "6"}, apperrors.ExitErrorConfig},
			{"algo twice", []string{"-algo", "logn", "6", "1"}, apperrors.ExitErrorConfig},
			{"malformed n", []string{"ten"}, apperrors.ExitErrorConfig},
			{"unknown choice", []string{"10", "3"}, apperrors.ExitErrorConfig},
			{"missing config file", []string{"-config", "/nonexistent/fibmeter.toml"}, apperrors.ExitErrorConfig},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				var buf bytes.Buffer
				_, err := ParseConfig("fibmeter", tt.args, &buf, availableAlgos)
				if err == nil {
					t.Fatal("expected an error")
				}
				if got := apperrors.ExitCode(err); got != tt.exitCode {
					t.Errorf("ExitCode(%v) = %d, want %d", err, got, tt.exitCode)
				}
				if !strings.Contains(buf.String(), "Usage:") {
					t.Error("usage should be printed on configuration errors")
				}
			})
		}
	})

	t.Run("unknown flag", func(t *testing.T) {
		t.Parallel()
		if _, err := ParseConfig("fibmeter", []string{"-unknown"}, io.Discard, availableAlgos); err == nil {
			t.Error("Expected error for unknown flag")
		}
	})

	t.Run("help", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		_, err := ParseConfig("fibmeter", []string{"-h"}, &buf, availableAlgos)
		if !IsHelp(err) {
			t.Errorf("err = %v, want flag.ErrHelp", err)
		}
		if !strings.Contains(buf.String(), "[n] [choice]") {
			t.Errorf("usage text missing positional arguments:\n%s", buf.String())
		}
	})
}

func TestNegativeIndexRejected(t *testing.T) {
	t.Parallel()
	for _, args := range [][]string{
		{"-n", "-1"},
		{"--", "-7"},
		{"--", "-7", "2"},
		{"-5"},
		{"-5", "2"},
		{"-q", "-5", "2"},
		{"-timeout", "1m", "-5"},
	} {
		_, err := ParseConfig("fibmeter", args, io.Discard, availableAlgos)
		var validation apperrors.ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("%v: err = %v, want ValidationError", args, err)
		}
		if validation.Field != "n" || !errors.Is(err, fibonacci.ErrNegativeIndex) {
			t.Errorf("%v: err = %#v", args, validation)
		}
		if apperrors.ExitCode(err) != apperrors.ExitErrorConfig {
			t.Errorf("%v: exit code = %d", args, apperrors.ExitCode(err))
		}
	}
}

func TestSeparateNegativeIndex(t *testing.T) {
	t.Parallel()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Int64("n", 0, "")
	fs.Bool("q", false, "")
	tests := []struct {
		args []string
		want []string
	}{
		{nil, nil},
		{[]string{"-5", "2"}, []string{"--", "-5", "2"}},
		{[]string{"-q", "-5"}, []string{"-q", "--", "-5"}},
		{[]string{"-n", "-5"}, []string{"-n", "-5"}},
		{[]string{"-n=3", "-5"}, []string{"-n=3", "--", "-5"}},
		{[]string{"10", "-5"}, []string{"10", "-5"}},
		{[]string{"--", "-5"}, []string{"--", "-5"}},
	}
	for _, tt := range tests {
		if got := separateNegativeIndex(fs, tt.args); !slices.Equal(got, tt.want) {
			t.Errorf("separateNegativeIndex(%q) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestConfigFile(t *testing.T) {
	t.Parallel()

	path := writeTOML(t, `
n = 250
algo = "all"
timeout = "45s"
parallel = true
check_interval = 128
log_level = "info"

[output]
json = true
file = "fib.txt"

[server]
port = "7070"
`)

	cfg, err := ParseConfig("fibmeter", []string{"-config", path, "-port", "9999"}, io.Discard, availableAlgos)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.N != 250 || cfg.Algo != AlgoAll || cfg.Timeout != 45*time.Second {
		t.Errorf("N, Algo, Timeout = %d, %q, %v", cfg.N, cfg.Algo, cfg.Timeout)
	}
	if !cfg.Parallel || cfg.CheckInterval != 128 || cfg.LogLevel != "info" {
		t.Errorf("Parallel, CheckInterval, LogLevel = %v, %d, %q", cfg.Parallel, cfg.CheckInterval, cfg.LogLevel)
	}
	if !cfg.JSONOutput || cfg.OutputFile != "fib.txt" {
		t.Errorf("JSONOutput, OutputFile = %v, %q", cfg.JSONOutput, cfg.OutputFile)
	}
	if cfg.Port != "9999" {
		t.Errorf("Port = %q, the flag should win over the file", cfg.Port)
	}
}

func TestConfigFileErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "colour = \"red\"\n", "unknown keys: colour"},
		{"bad timeout", "timeout = \"soon\"\n", "invalid timeout"},
		{"bad syntax", "n = \n", "reading config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadFile(writeTOML(t, tt.content))
			var cfgErr apperrors.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("err = %v, want ConfigError", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestConfigFileNegativeIndex(t *testing.T) {
	t.Parallel()
	path := writeTOML(t, "n = -3\n")
	_, err := ParseConfig("fibmeter", []string{"-config", path}, io.Discard, availableAlgos)
	if !errors.Is(err, fibonacci.ErrNegativeIndex) {
		t.Errorf("err = %v, want ErrNegativeIndex", err)
	}
}

// The tests below modify the environment and cannot run in parallel.

func TestEnvOverrides(t *testing.T) {
	env := map[string]string{
		"FIBMETER_N":              "200",
		"FIBMETER_ALGO":           "logn",
		"FIBMETER_SERVER":         "true",
		"FIBMETER_PORT":           "3000",
		"FIBMETER_TIMEOUT":        "2m",
		"FIBMETER_CHECK_INTERVAL": "512",
		"FIBMETER_PARALLEL":       "yes",
		"FIBMETER_VERBOSE":        "1",
		"FIBMETER_DETAILS":        "true",
		"FIBMETER_QUIET":          "true",
		"FIBMETER_HEX":            "true",
		"FIBMETER_NO_COLOR":       "true",
		"FIBMETER_CLASSIC":        "true",
		"FIBMETER_JSON":           "true",
		"FIBMETER_OUTPUT":         "out.txt",
		"FIBMETER_LOG_LEVEL":      "error",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := ParseConfig("fibmeter", nil, io.Discard, availableAlgos)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.N != 200 || cfg.Algo != "logn" || cfg.Port != "3000" || cfg.OutputFile != "out.txt" {
		t.Errorf("string and numeric overrides not applied: %+v", cfg)
	}
	if cfg.Timeout != 2*time.Minute || cfg.CheckInterval != 512 || cfg.LogLevel != "error" {
		t.Errorf("Timeout, CheckInterval, LogLevel = %v, %d, %q", cfg.Timeout, cfg.CheckInterval, cfg.LogLevel)
	}
	for name, v := range map[string]bool{
		"ServerMode": cfg.ServerMode, "Parallel": cfg.Parallel, "Verbose": cfg.Verbose,
		"Details": cfg.Details, "Quiet": cfg.Quiet, "HexOutput": cfg.HexOutput,
		"NoColor": cfg.NoColor, "Classic": cfg.Classic, "JSONOutput": cfg.JSONOutput,
	} {
		if !v {
			t.Errorf("%s should be set from the environment", name)
		}
	}
}

func TestPrecedence(t *testing.T) {
	path := writeTOML(t, "n = 10\nalgo = \"logn\"\n[server]\nport = \"7000\"\n")
	t.Setenv("FIBMETER_N", "20")
	t.Setenv("FIBMETER_CONFIG", path)
	t.Setenv("FIBMETER_TIMEOUT", "not-a-duration")

	cfg, err := ParseConfig("fibmeter", nil, io.Discard, availableAlgos)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.N != 20 {
		t.Errorf("N = %d, the environment should win over the file", cfg.N)
	}
	if cfg.Algo != "logn" || cfg.Port != "7000" {
		t.Errorf("Algo, Port = %q, %q, the file should win over defaults", cfg.Algo, cfg.Port)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("a malformed environment value should be ignored, got %v", cfg.Timeout)
	}

	cfg, err = ParseConfig("fibmeter", []string{"-n", "30"}, io.Discard, availableAlgos)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.N != 30 {
		t.Errorf("N = %d, the flag should win over the environment", cfg.N)
	}
}

func TestEnvNegativeIndex(t *testing.T) {
	t.Setenv("FIBMETER_N", "-42")
	_, err := ParseConfig("fibmeter", nil, io.Discard, availableAlgos)
	if !errors.Is(err, fibonacci.ErrNegativeIndex) {
		t.Errorf("err = %v, want ErrNegativeIndex", err)
	}
}
