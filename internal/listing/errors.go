package listing

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedStatus is wrapped by a TransportError when the server
	// answered with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrInvalidProxy is returned when the proxy URL cannot be used.
	// Supported schemes are http, https, socks5 and socks5h.
	ErrInvalidProxy = errors.New("invalid proxy URL")
)

// TransportError reports that a listing page could not be retrieved.
type TransportError struct {
	// URL is the page that was requested.
	URL string

	// StatusCode is the HTTP status when the server answered, otherwise 0.
	StatusCode int

	// Err is the underlying failure.
	Err error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to retrieve %s: HTTP status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to connect to %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
