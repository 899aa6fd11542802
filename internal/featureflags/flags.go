package featureflags

import (
	"os"
	"strings"
)

// Flags recognized by the server. Gating ambient concerns behind flags
// keeps local development lightweight without extra configuration.
const (
	AuditLog       = "audit_log"
	LoginRateLimit = "login_rate_limit"
	Tracing        = "tracing"
)

// Enabled returns true if a flag is enabled via environment variable.
// Flags are read from env as FLAG_<NAME>=true/1/yes (case-insensitive)
func Enabled(name string) bool {
	return EnabledDefault(name, false)
}

// EnabledDefault is like Enabled but falls back to def when the
// environment variable is unset.
func EnabledDefault(name string, def bool) bool {
	v := os.Getenv("FLAG_" + strings.ToUpper(name))
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
