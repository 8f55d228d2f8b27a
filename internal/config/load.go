package config

import (
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/mahdiidarabi/sigkat/internal/errors"
)

// EnvPrefix is the environment variable prefix, e.g. SIGKAT_WORKERS or
// SIGKAT_SOAK_TRIALS.
const EnvPrefix = "SIGKAT"

// FileName is the config file looked up in the working directory when no
// explicit path is given.
const FileName = "sigkat"

// NewViper creates a Viper instance with defaults and environment lookup.
// The CLI binds its flags to it before calling FromViper.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("workers", d.Workers)
	v.SetDefault("nonce", d.Nonce)
	v.SetDefault("mutations", d.Mutations)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("soak.trials", d.Soak.Trials)
	v.SetDefault("soak.rsa_bits", d.Soak.RSABits)
	v.SetDefault("soak.curve", d.Soak.Curve)
	v.SetDefault("report.format", d.Report.Format)
	v.SetDefault("report.verbose", d.Report.Verbose)
}

// Load reads configuration from the file at path (or sigkat.yaml in the
// working directory when path is empty), the environment, and defaults.
func Load(path string) (*Config, error) {
	return FromViper(NewViper(), path)
}

// FromViper reads the config file into v, then unmarshals and validates.
// A missing sigkat.yaml is not an error; a missing explicit path is.
func FromViper(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil && (path != "" || !isConfigNotFoundError(err)) {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	normalize(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize lower-cases the enumerated settings so callers can compare them
// against the exported constants directly.
func normalize(cfg *Config) {
	cfg.Nonce = strings.ToLower(cfg.Nonce)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	cfg.Report.Format = strings.ToLower(cfg.Report.Format)
}

func isConfigNotFoundError(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound)
}

func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}
