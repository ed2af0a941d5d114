package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation Helpers

var (
	cveIDRegex = regexp.MustCompile(`^CVE-\d{4}-\d{4,}$`)
)

// IsValidCVEID checks the MITRE identifier shape, e.g. CVE-2024-1234.
func IsValidCVEID(id string) bool {
	return cveIDRegex.MatchString(id)
}

// MaxUserIDLength caps configuration owner ids, in bytes.
const MaxUserIDLength = 256

// IsValidUserID accepts any non-empty UTF-8 id up to MaxUserIDLength bytes.
// Ids are opaque keys, so spaces and punctuation are allowed.
func IsValidUserID(id string) bool {
	return id != "" && len(id) <= MaxUserIDLength && utf8.ValidString(id)
}

// IsValidSeverity reports whether s is one of the published severity labels.
func IsValidSeverity(s string) bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// NormalizeSeverity maps case variants to the canonical label; unknown
// values are returned unchanged.
func NormalizeSeverity(s string) string {
	for _, label := range []string{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow} {
		if strings.EqualFold(s, label) {
			return label
		}
	}
	return s
}
