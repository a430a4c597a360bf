// Package envvar expands environment variable placeholders in configuration
// values.
package envvar

import (
	"os"
	"regexp"
	"strings"
)

// pattern matches ${VAR_NAME} and ${VAR_NAME:-default} placeholders.
var pattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)(:-[^}]*)?\}`)

// Expand replaces ${VAR_NAME} placeholders with their environment variable
// values. ${VAR_NAME:-default} falls back to the default when the variable is
// unset; a plain placeholder for an unset variable expands to an empty string.
func Expand(value string) string {
	if value == "" || !strings.Contains(value, "${") {
		return value
	}

	return pattern.ReplaceAllStringFunc(value, func(match string) string {
		inner := match[2 : len(match)-1]

		name := inner
		fallback := ""

		if idx := strings.Index(inner, ":-"); idx >= 0 {
			name = inner[:idx]
			fallback = inner[idx+2:]
		}

		if env, ok := os.LookupEnv(name); ok {
			return env
		}

		return fallback
	})
}
