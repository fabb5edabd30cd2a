package utils

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ShortID returns the first 8 hex digits of a fresh UUID, upper-cased
func ShortID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}

// GenerateOrderNumber builds a human-readable order number: PREFIX-YYMMDD-XXXXXXXX
func GenerateOrderNumber(prefix string, at time.Time) string {
	return prefix + "-" + at.Format("060102") + "-" + ShortID()
}
