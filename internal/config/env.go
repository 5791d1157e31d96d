package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

func lookupEnv(key string) (string, bool) {
	val := os.Getenv(EnvPrefix + key)
	return val, val != ""
}

func getEnvString(key, defaultVal string) string {
	if val, ok := lookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt64 keeps negative values so that the index check can reject them.
// Malformed values are ignored.
func getEnvInt64(key string, defaultVal int64) int64 {
	if val, ok := lookupEnv(key); ok {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val, ok := lookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvBool accepts true/1/yes and false/0/no, case-insensitively.
func getEnvBool(key string, defaultVal bool) bool {
	if val, ok := lookupEnv(key); ok {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := lookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// isFlagSet reports whether any of names was given on the command line.
func isFlagSet(fs *flag.FlagSet, names ...string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				found = true
			}
		}
	})
	return found
}

// applyEnvOverrides copies FIBMETER_* values into config for every setting
// not given on the command line:
//
//	FIBMETER_N               index (may be negative, then rejected)
//	FIBMETER_ALGO            algorithm name or "all"
//	FIBMETER_TIMEOUT         duration, e.g. "30s"
//	FIBMETER_PARALLEL        bool
//	FIBMETER_CHECK_INTERVAL  int
//	FIBMETER_PORT            server port
//	FIBMETER_SERVER          bool
//	FIBMETER_JSON, _VERBOSE, _DETAILS, _QUIET, _HEX, _NO_COLOR, _CLASSIC  bool
//	FIBMETER_OUTPUT          output file
//	FIBMETER_LOG_LEVEL       zerolog level
//	FIBMETER_CONFIG          TOML file, read before the others
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "n") {
		config.n = getEnvInt64("N", config.n)
	}
	if !isFlagSet(fs, "check-interval") {
		config.CheckInterval = getEnvInt("CHECK_INTERVAL", config.CheckInterval)
	}
	if !isFlagSet(fs, "timeout") {
		config.Timeout = getEnvDuration("TIMEOUT", config.Timeout)
	}

	strs := []struct {
		flags []string
		key   string
		dst   *string
	}{
		{[]string{"algo"}, "ALGO", &config.Algo},
		{[]string{"port"}, "PORT", &config.Port},
		{[]string{"output", "o"}, "OUTPUT", &config.OutputFile},
		{[]string{"log-level"}, "LOG_LEVEL", &config.LogLevel},
	}
	for _, s := range strs {
		if !isFlagSet(fs, s.flags...) {
			*s.dst = getEnvString(s.key, *s.dst)
		}
	}

	bools := []struct {
		flags []string
		key   string
		dst   *bool
	}{
		{[]string{"parallel"}, "PARALLEL", &config.Parallel},
		{[]string{"server"}, "SERVER", &config.ServerMode},
		{[]string{"json"}, "JSON", &config.JSONOutput},
		{[]string{"v"}, "VERBOSE", &config.Verbose},
		{[]string{"d", "details"}, "DETAILS", &config.Details},
		{[]string{"quiet", "q"}, "QUIET", &config.Quiet},
		{[]string{"hex"}, "HEX", &config.HexOutput},
		{[]string{"no-color"}, "NO_COLOR", &config.NoColor},
		{[]string{"classic"}, "CLASSIC", &config.Classic},
	}
	for _, b := range bools {
		if !isFlagSet(fs, b.flags...) {
			*b.dst = getEnvBool(b.key, *b.dst)
		}
	}
}
