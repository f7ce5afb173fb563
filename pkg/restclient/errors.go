package restclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrConfiguration is matched by every *ConfigError.
	ErrConfiguration = errors.New("restclient: invalid configuration")

	// ErrUnauthorized is matched by an *InvalidRequestError with status 401.
	ErrUnauthorized = errors.New("restclient: unauthorized")

	// ErrNotFound is matched by an *InvalidRequestError with status 404.
	ErrNotFound = errors.New("restclient: not found")

	// ErrUnsupportedMethod is returned by Submit for a request whose method is
	// not one of GET, POST, PUT or DELETE.
	ErrUnsupportedMethod = errors.New("restclient: unsupported request method")

	// ErrClientClosed is returned by Submit once the client has been closed.
	ErrClientClosed = errors.New("restclient: client closed")

	// ErrMissingPathParam is returned when an endpoint placeholder has no value.
	ErrMissingPathParam = errors.New("restclient: missing path param")

	// ErrEmptyPathParam is returned when an endpoint placeholder has an empty
	// value.
	ErrEmptyPathParam = errors.New("restclient: empty path param")
)

// ConfigError reports an invalid setting. It is returned when building or
// loading a Configuration and when assembling its transport context.
type ConfigError struct {
	// Field is the name of the offending setting, e.g. "Host".
	Field string
	// Reason describes what is wrong with it.
	Reason string
	// Err is the underlying cause, if any.
	Err error
}

func (e *ConfigError) Error() string {
	msg := "restclient: invalid configuration"
	if e.Field != "" {
		msg += " " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Is reports whether target is ErrConfiguration.
func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

// ConnectionError is returned when a request could not be executed: DNS,
// socket, TLS handshake, proxy and protocol failures, timeouts and context
// cancellation.
type ConnectionError struct {
	Method string
	URL    string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("restclient: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ResultParsingError is returned when a response was received but its body
// could not be read or decoded.
type ResultParsingError struct {
	Err error
}

func (e *ResultParsingError) Error() string {
	return "restclient: reading response: " + e.Err.Error()
}

func (e *ResultParsingError) Unwrap() error { return e.Err }

// InvalidRequestError represents a non-2xx answer from the API server.
//
// It matches ErrUnauthorized for 401 and ErrNotFound for 404 through
// errors.Is.
type InvalidRequestError struct {
	StatusCode int
	// Body is the error message sent by the server.
	Body []byte
	Header http.Header
}

func (e *InvalidRequestError) Error() string {
	code := strings.ReplaceAll(strings.ToLower(http.StatusText(e.StatusCode)), " ", "_")
	return fmt.Sprintf("%d %s: %s", e.StatusCode, code, string(e.Body))
}

// Is reports whether target is the sentinel error of the response status.
func (e *InvalidRequestError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// IsUnauthorized reports whether err is an API error with status 401.
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }

// IsNotFound reports whether err is an API error with status 404.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// StatusCode returns the status of the API error in err's chain, or 0 if
// there is none.
func StatusCode(err error) int {
	var apiErr *InvalidRequestError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
