package recommend

import (
	"fmt"
	"strings"
)

// ConfigurationError reports an invalid recommendation configuration. It is
// surfaced before any computation starts and is the only error the engine
// propagates to callers; per-strategy failures degrade instead.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("recommendation config: %s: %s", e.Field, e.Reason)
}

func configError(field, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func unknownStrategyError(name string, known []string) *ConfigurationError {
	return configError("enabled_strategies",
		"unknown strategy %q (known: %s)", name, strings.Join(known, ", "))
}
