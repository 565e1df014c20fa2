package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateLatLon validates a WGS84 coordinate pair.
// NaN and infinite values are rejected along with out-of-range values.
func ValidateLatLon(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return New(ErrCodeInvalidCoordinate, "coordinate must be finite: %v,%v", lat, lon)
	}
	if lat < -90 || lat > 90 {
		return New(ErrCodeInvalidCoordinate, "latitude %v out of range [-90, 90]", lat)
	}
	if lon < -180 || lon > 180 {
		return New(ErrCodeInvalidCoordinate, "longitude %v out of range [-180, 180]", lon)
	}
	return nil
}

// ValidatePath validates a file path supplied by a caller.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateOneOf validates that value is one of the allowed values.
// The error message lists the allowed values in order.
func ValidateOneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return New(ErrCodeInvalidConfig, "invalid %s %q (want one of: %s)", field, value, strings.Join(allowed, ", "))
}
