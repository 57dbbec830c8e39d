// Package config loads the diagnostic logging configuration from the
// process environment.
//
// Recognised variables (prefix VERTICAL_):
//
//	VERTICAL_LOG         debug | info | warn | error | off   (default error)
//	VERTICAL_LOG_STYLE   text | json                         (default text)
//	VERTICAL_LOG_OUTPUT  stderr | stdout                     (default stderr)
//	VERTICAL_LOG_SOURCE  true | false                        (default false)
package config

import (
	stdErrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/reglet-dev/vertical/domain/errors"
)

// EnvPrefix is prepended to every configuration key when reading the environment.
const EnvPrefix = "VERTICAL"

const (
	keyLevel  = "log"
	keyStyle  = "log_style"
	keyOutput = "log_output"
	keySource = "log_source"
)

// LevelOff disables logging entirely.
const LevelOff = "off"

// validate is a package-level singleton; creating a validator is expensive.
var validate = validator.New()

// Log configures the process-wide diagnostic logger.
type Log struct {
	Level     string `validate:"required,oneof=debug info warn error off"`
	Style     string `validate:"required,oneof=text json"`
	Output    string `validate:"required,oneof=stderr stdout"`
	AddSource bool
}

// Default returns the configuration used when nothing is set. Only errors are
// reported by default.
func Default() Log {
	return Log{
		Level:  "error",
		Style:  "text",
		Output: "stderr",
	}
}

// Load reads the configuration from the environment. When the result does not
// validate, Load returns Default() together with the validation error.
func Load() (Log, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	def := Default()
	v.SetDefault(keyLevel, def.Level)
	v.SetDefault(keyStyle, def.Style)
	v.SetDefault(keyOutput, def.Output)
	v.SetDefault(keySource, def.AddSource)

	cfg := Log{
		Level:     normalize(v.GetString(keyLevel)),
		Style:     normalize(v.GetString(keyStyle)),
		Output:    normalize(v.GetString(keyOutput)),
		AddSource: v.GetBool(keySource),
	}
	if err := cfg.Validate(); err != nil {
		return def, err
	}
	return cfg, nil
}

// Validate checks the configuration and returns a *errors.ConfigError naming
// the first offending field.
func (c Log) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if stdErrors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		reason := fmt.Errorf("value %q failed %q", fe.Value(), fe.Tag())
		if fe.Tag() == "oneof" {
			reason = fmt.Errorf("value %q must be one of: %s", fe.Value(), fe.Param())
		}
		return &errors.ConfigError{Field: fe.Field(), Err: reason}
	}
	return &errors.ConfigError{Err: err}
}

// SlogLevel maps Level to a slog level. It reports false when logging is off.
func (c Log) SlogLevel() (slog.Level, bool) {
	switch c.Level {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case LevelOff:
		return 0, false
	default:
		return slog.LevelError, true
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
