// Package config loads sigkat settings. Values are resolved in this order
// (highest precedence first):
//  1. Command-line flags bound by the CLI
//  2. Environment variables (SIGKAT_* prefix, dots become underscores)
//  3. The config file (--config, or sigkat.yaml in the working directory)
//  4. Built-in defaults
package config

import (
	"time"
)

// Config is the complete sigkat configuration.
type Config struct {
	// Workers bounds concurrent vector checks (0 = one per CPU).
	Workers int `yaml:"workers" mapstructure:"workers"`

	// Nonce selects the ECDSA nonce source: "rfc6979" or "random".
	Nonce string `yaml:"nonce" mapstructure:"nonce"`

	// Mutations enables the corrupted-signature checks on valid ECDSA vectors.
	Mutations bool `yaml:"mutations" mapstructure:"mutations"`

	// Timeout bounds a whole run (0 = no limit).
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Soak   SoakConfig   `yaml:"soak" mapstructure:"soak"`
	Report ReportConfig `yaml:"report" mapstructure:"report"`
}

// LogConfig controls logging output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" mapstructure:"level"`

	// Format is auto, console or json. Auto picks console on a terminal.
	Format string `yaml:"format" mapstructure:"format"`

	// File, when set, also writes JSON logs to a rotating file.
	File string `yaml:"file" mapstructure:"file"`
}

// SoakConfig controls `sigkat soak`.
type SoakConfig struct {
	Trials  int    `yaml:"trials" mapstructure:"trials"`
	RSABits int    `yaml:"rsa_bits" mapstructure:"rsa_bits"`
	Curve   string `yaml:"curve" mapstructure:"curve"`
}

// ReportConfig controls how run results are printed.
type ReportConfig struct {
	// Format is text or json.
	Format string `yaml:"format" mapstructure:"format"`

	// Verbose prints passing checks as well as failures.
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// Nonce sources.
const (
	NonceRFC6979 = "rfc6979"
	NonceRandom  = "random"
)

// Report formats.
const (
	ReportText = "text"
	ReportJSON = "json"
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Workers:   0,
		Nonce:     NonceRFC6979,
		Mutations: true,
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Soak: SoakConfig{
			Trials:  10000,
			RSABits: 2048,
			Curve:   "P-384",
		},
		Report: ReportConfig{
			Format: ReportText,
		},
	}
}
