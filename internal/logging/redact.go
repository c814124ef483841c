package logging

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lnbitsd/internal/config"
)

// Secret creates a Zap field for a config.Secret. The value is never logged;
// only the redaction marker and length appear.
func Secret(key string, val config.Secret) zap.Field {
	if !val.IsSet() {
		return zap.String(key, "")
	}
	return zap.String(key, config.Redacted+":"+strconv.Itoa(len(val.Value())))
}

// RedactedString creates a Zap field with the value replaced by the redaction
// marker and its length.
func RedactedString(key, val string) zap.Field {
	return zap.String(key, config.Redacted+":"+strconv.Itoa(len(val)))
}

// Truncated creates a Zap field with the value truncated to max runes, for
// logging response bodies and invoices without flooding the log.
func Truncated(key, val string, max int) zap.Field {
	if len(val) > max {
		val = val[:max] + "..."
	}
	return zap.String(key, val)
}
