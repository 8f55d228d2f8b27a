package config

import (
	"slices"
	"strings"

	"github.com/mahdiidarabi/sigkat/internal/curve"
	"github.com/mahdiidarabi/sigkat/internal/ecsig"
	"github.com/mahdiidarabi/sigkat/internal/errors"
)

var (
	logLevels     = []string{"debug", "info", "warn", "error"}
	logFormats    = []string{"auto", "console", "json"}
	nonceSources  = []string{NonceRFC6979, NonceRandom}
	reportFormats = []string{ReportText, ReportJSON}
)

// Validate checks the configuration for out-of-range values. It returns an
// error wrapping ErrInvalidConfig for the first failure found.
//
// Validation rules:
//   - workers and timeout must not be negative
//   - log level, log format, nonce and report format must be known values
//   - soak trials must be positive, soak.rsa_bits 0 (skip) or a multiple of
//     8 of at least 1024, and soak.curve empty (skip) or registered
//   - soak must exercise at least one algorithm
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.Invalidf(errors.ErrInvalidConfig, "nil config")
	}
	if cfg.Workers < 0 {
		return errors.Invalidf(errors.ErrInvalidConfig, "workers must not be negative, got %d", cfg.Workers)
	}
	if cfg.Timeout < 0 {
		return errors.Invalidf(errors.ErrInvalidConfig, "timeout must not be negative, got %s", cfg.Timeout)
	}
	if err := oneOf("log.level", cfg.Log.Level, logLevels); err != nil {
		return err
	}
	if err := oneOf("log.format", cfg.Log.Format, logFormats); err != nil {
		return err
	}
	if err := oneOf("nonce", cfg.Nonce, nonceSources); err != nil {
		return err
	}
	if err := oneOf("report.format", cfg.Report.Format, reportFormats); err != nil {
		return err
	}
	return validateSoak(&cfg.Soak)
}

func validateSoak(s *SoakConfig) error {
	if s.Trials <= 0 {
		return errors.Invalidf(errors.ErrInvalidConfig, "soak.trials must be positive, got %d", s.Trials)
	}
	if s.RSABits != 0 && (s.RSABits < 1024 || s.RSABits%8 != 0) {
		return errors.Invalidf(errors.ErrInvalidConfig, "soak.rsa_bits must be 0 or a multiple of 8 of at least 1024, got %d", s.RSABits)
	}
	if s.Curve != "" {
		if _, err := curve.Lookup(s.Curve); err != nil {
			return errors.Invalidf(errors.ErrInvalidConfig, "soak.curve: %v", err)
		}
	}
	if s.RSABits == 0 && s.Curve == "" {
		return errors.Invalidf(errors.ErrInvalidConfig, "soak needs soak.rsa_bits or soak.curve")
	}
	return nil
}

func oneOf(key, value string, allowed []string) error {
	if !slices.Contains(allowed, strings.ToLower(value)) {
		return errors.Invalidf(errors.ErrInvalidConfig, "%s must be one of %v, got %q", key, allowed, value)
	}
	return nil
}

// NonceSource returns the ECDSA nonce source selected by Nonce.
func (c *Config) NonceSource() ecsig.NonceSource {
	if strings.EqualFold(c.Nonce, NonceRandom) {
		return ecsig.RandomNonces{}
	}
	return ecsig.RFC6979{}
}
