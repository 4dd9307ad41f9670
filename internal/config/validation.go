package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// ValidateConfig performs comprehensive validation of the configuration.
func ValidateConfig(c *Config) error {
	var errs ValidationErrors

	if c.DataDir == "" {
		errs = append(errs, ValidationError{Field: "data_dir", Message: "must not be empty"})
	}
	errs = append(errs, validateStorage(&c.Storage)...)
	errs = append(errs, validateAutosave(&c.Autosave)...)
	errs = append(errs, validateLog(&c.Log)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateStorage(s *StorageConfig) ValidationErrors {
	var errs ValidationErrors
	switch s.Driver {
	case "sqlite":
		if s.Path == "" {
			errs = append(errs, ValidationError{Field: "storage.path", Message: "required for sqlite"})
		}
	case "postgres", "mysql", "mongodb":
		if s.DSN == "" {
			errs = append(errs, ValidationError{Field: "storage.dsn", Message: fmt.Sprintf("required for %s", s.Driver)})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "storage.driver",
			Message: fmt.Sprintf("unsupported driver %q (sqlite, postgres, mysql, mongodb)", s.Driver),
		})
	}
	switch s.SecretBackend {
	case "", "env", "keychain":
	default:
		errs = append(errs, ValidationError{Field: "storage.secret_backend", Message: fmt.Sprintf("unknown backend %q", s.SecretBackend)})
	}
	return errs
}

func validateAutosave(a *AutosaveConfig) ValidationErrors {
	var errs ValidationErrors
	switch a.Mode {
	case AutosaveImmediate:
	case AutosaveScheduled:
		if _, err := cron.ParseStandard(a.Schedule); err != nil {
			errs = append(errs, ValidationError{Field: "autosave.schedule", Message: err.Error()})
		}
	default:
		errs = append(errs, ValidationError{Field: "autosave.mode", Message: fmt.Sprintf("unknown mode %q", a.Mode)})
	}
	return errs
}

func validateLog(l *LogConfig) ValidationErrors {
	var errs ValidationErrors
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{Field: "log.level", Message: fmt.Sprintf("unknown level %q", l.Level)})
	}
	switch l.Format {
	case "text", "json":
	default:
		errs = append(errs, ValidationError{Field: "log.format", Message: fmt.Sprintf("unknown format %q", l.Format)})
	}
	return errs
}
