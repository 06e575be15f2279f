package airtsgen

import (
	"errors"

	"github.com/hlop3z/airtsgen/internal/alerr"
)

// Sentinel errors for common error conditions.
// Use errors.Is() to check for these errors.
var (
	// ErrMissingAPIKey is returned when the API must be called but no key is set.
	ErrMissingAPIKey = errors.New("airtsgen: api key required")

	// ErrMissingBaseID is returned when no base id is set.
	ErrMissingBaseID = errors.New("airtsgen: base id required")

	// ErrOfflineWithoutCache is returned when offline mode has no cache to read.
	ErrOfflineWithoutCache = errors.New("airtsgen: offline mode requires a cache directory")
)

// Code returns the stable error code (e.g. "E3001") carried by err, or "".
func Code(err error) string {
	return string(alerr.CodeOf(err))
}

// IsProviderError reports whether err came from the schema source
// (authentication, missing base, rate limit, transport).
func IsProviderError(err error) bool {
	return alerr.IsProviderError(err)
}
