package gateway

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredentials = errors.New("missing_credentials")
	ErrInvalidCertificate = errors.New("invalid_certificate")
)

// APIError is returned for any non-2xx gateway response. The body is kept
// verbatim so callers can log exactly what the provider said.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway request failed: status=%d body=%s", e.StatusCode, e.Body)
}

// IsAPIError reports whether err carries a gateway response status.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
