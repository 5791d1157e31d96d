package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	apperrors "github.com/agbru/fibmeter/internal/errors"
)

// FileConfig is the content of a TOML configuration file. Every key is
// optional; unset keys leave the defaults in place.
//
//	n = 100000
//	algo = "all"
//	timeout = "30s"
//	parallel = false
//	log_level = "info"
//
//	[server]
//	port = "9090"
type FileConfig struct {
	N             *int64  `toml:"n"`
	Algo          *string `toml:"algo"`
	Timeout       *string `toml:"timeout"`
	Parallel      *bool   `toml:"parallel"`
	CheckInterval *int    `toml:"check_interval"`
	LogLevel      *string `toml:"log_level"`

	Output struct {
		JSON    *bool   `toml:"json"`
		Verbose *bool   `toml:"verbose"`
		Details *bool   `toml:"details"`
		Quiet   *bool   `toml:"quiet"`
		Hex     *bool   `toml:"hex"`
		NoColor *bool   `toml:"no_color"`
		Classic *bool   `toml:"classic"`
		File    *string `toml:"file"`
	} `toml:"output"`

	Server struct {
		Enabled *bool   `toml:"enabled"`
		Port    *string `toml:"port"`
	} `toml:"server"`

	timeout time.Duration
}

// LoadFile decodes the TOML file at path. Unknown keys and malformed
// durations are reported as apperrors.ConfigError.
func LoadFile(path string) (*FileConfig, error) {
	var fc FileConfig
	meta, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return nil, apperrors.ConfigError{Message: fmt.Sprintf("reading config file %s", path), Cause: err}
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, apperrors.NewConfigError("config file %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if fc.Timeout != nil {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return nil, apperrors.ConfigError{Message: fmt.Sprintf("config file %s: invalid timeout", path), Cause: err}
		}
		fc.timeout = d
	}
	return &fc, nil
}

// apply copies the file values into config for settings not given on the
// command line. Environment variables are applied afterwards and win.
func (fc *FileConfig) apply(config *AppConfig, fs *flag.FlagSet) {
	setInt64 := func(dst *int64, src *int64, flags ...string) {
		if src != nil && !isFlagSet(fs, flags...) {
			*dst = *src
		}
	}
	setInt := func(dst *int, src *int, flags ...string) {
		if src != nil && !isFlagSet(fs, flags...) {
			*dst = *src
		}
	}
	setString := func(dst *string, src *string, flags ...string) {
		if src != nil && !isFlagSet(fs, flags...) {
			*dst = *src
		}
	}
	setBool := func(dst *bool, src *bool, flags ...string) {
		if src != nil && !isFlagSet(fs, flags...) {
			*dst = *src
		}
	}

	setInt64(&config.n, fc.N, "n")
	setString(&config.Algo, fc.Algo, "algo")
	if fc.Timeout != nil && !isFlagSet(fs, "timeout") {
		config.Timeout = fc.timeout
	}
	setBool(&config.Parallel, fc.Parallel, "parallel")
	setInt(&config.CheckInterval, fc.CheckInterval, "check-interval")
	setString(&config.LogLevel, fc.LogLevel, "log-level")

	setBool(&config.JSONOutput, fc.Output.JSON, "json")
	setBool(&config.Verbose, fc.Output.Verbose, "v")
	setBool(&config.Details, fc.Output.Details, "d", "details")
	setBool(&config.Quiet, fc.Output.Quiet, "quiet", "q")
	setBool(&config.HexOutput, fc.Output.Hex, "hex")
	setBool(&config.NoColor, fc.Output.NoColor, "no-color")
	setBool(&config.Classic, fc.Output.Classic, "classic")
	setString(&config.OutputFile, fc.Output.File, "output", "o")

	setBool(&config.ServerMode, fc.Server.Enabled, "server")
	setString(&config.Port, fc.Server.Port, "port")
}
