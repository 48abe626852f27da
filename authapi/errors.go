package authapi

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidResponse is returned when the auth API answered 2xx with no
	// body to decode.
	ErrInvalidResponse = errors.New("auth api returned an empty response")

	// ErrMissingToken is returned when a 2xx response body carried no token.
	ErrMissingToken = errors.New("auth api response has no token")
)

// StatusError carries a non-2xx status from the auth API together with the
// server's message, when one was decodable.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("auth api: status %d", e.Code)
	}
	return fmt.Sprintf("auth api: status %d: %s", e.Code, e.Message)
}
