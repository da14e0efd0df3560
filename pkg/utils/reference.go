package utils

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateReferenceNo builds a short human-readable reference such as INV-20240611-3F9A1C2B.
func GenerateReferenceNo(prefix string, at time.Time) string {
	return prefix + "-" + at.Format("20060102") + "-" + strings.ToUpper(uuid.New().String()[:8])
}
