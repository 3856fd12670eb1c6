package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a NetworkError
type ErrorKind int

const (
	// KindMalformedEndpoint means the endpoint or base URL is not a valid absolute URL
	KindMalformedEndpoint ErrorKind = iota + 1
	// KindResponseNotHTTP means no HTTP response could be obtained
	KindResponseNotHTTP
	// KindStatus means the server answered with a non-2xx status
	KindStatus
	// KindNoData means the response body could not be read
	KindNoData
	// KindTimeout means the transport gave up waiting for the server
	KindTimeout
	// KindSessionNotConfigured means no current session is installed
	KindSessionNotConfigured
	// KindRefreshTokenMissing means a refresh was requested without a stored refresh token
	KindRefreshTokenMissing
	// KindClientCredentialsMissing means a refresh was requested without stored client credentials
	KindClientCredentialsMissing
	// KindAuthenticationRequired means an authorized call was attempted without a valid access token
	KindAuthenticationRequired
)

func (k ErrorKind) String() string {
	switch k {
	case KindMalformedEndpoint:
		return "MalformedEndpoint"
	case KindResponseNotHTTP:
		return "ResponseNotHTTP"
	case KindStatus:
		return "Status"
	case KindNoData:
		return "NoData"
	case KindTimeout:
		return "Timeout"
	case KindSessionNotConfigured:
		return "SessionNotConfigured"
	case KindRefreshTokenMissing:
		return "RefreshTokenMissing"
	case KindClientCredentialsMissing:
		return "ClientCredentialsMissing"
	case KindAuthenticationRequired:
		return "AuthenticationRequired"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// NetworkError is the error value of every failed network operation.
// Match a kind with errors.Is against the Err* sentinels, or inspect the fields with errors.As.
type NetworkError struct {
	Kind ErrorKind

	// Endpoint is set for KindMalformedEndpoint
	Endpoint string

	// StatusCode and Body are set for KindStatus. Body is nil when the
	// error response carried no parseable JSON object.
	StatusCode int
	Body       map[string]any

	// Err is the underlying transport error, if any
	Err error
}

var (
	ErrMalformedEndpoint        = &NetworkError{Kind: KindMalformedEndpoint}
	ErrResponseNotHTTP          = &NetworkError{Kind: KindResponseNotHTTP}
	ErrStatus                   = &NetworkError{Kind: KindStatus}
	ErrNoData                   = &NetworkError{Kind: KindNoData}
	ErrTimeout                  = &NetworkError{Kind: KindTimeout}
	ErrSessionNotConfigured     = &NetworkError{Kind: KindSessionNotConfigured}
	ErrRefreshTokenMissing      = &NetworkError{Kind: KindRefreshTokenMissing}
	ErrClientCredentialsMissing = &NetworkError{Kind: KindClientCredentialsMissing}
	ErrAuthenticationRequired   = &NetworkError{Kind: KindAuthenticationRequired}
)

// ErrTypeMismatch is returned when a 2xx response body is not a JSON object or array
var ErrTypeMismatch = errors.New("response type mismatch")

// errorMessageKeys are the error body fields checked, in order, for a server message
var errorMessageKeys = []string{"statusText", "message", "error_description", "error"}

// NewMalformedEndpoint reports an endpoint that does not form a valid absolute URL
func NewMalformedEndpoint(endpoint string, err error) *NetworkError {
	return &NetworkError{Kind: KindMalformedEndpoint, Endpoint: endpoint, Err: err}
}

// NewStatusError reports a non-2xx response
func NewStatusError(code int, body map[string]any) *NetworkError {
	return &NetworkError{Kind: KindStatus, StatusCode: code, Body: body}
}

func (e *NetworkError) Error() string {
	switch e.Kind {
	case KindMalformedEndpoint:
		return fmt.Sprintf("malformed endpoint %q", e.Endpoint)
	case KindResponseNotHTTP:
		if e.Err != nil {
			return fmt.Sprintf("no HTTP response: %v", e.Err)
		}
		return "response was not an HTTP response"
	case KindStatus:
		return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message())
	case KindNoData:
		if e.Err != nil {
			return fmt.Sprintf("no data received: %v", e.Err)
		}
		return "no data received"
	case KindTimeout:
		return "request timed out"
	case KindSessionNotConfigured:
		return "no session configured"
	case KindRefreshTokenMissing:
		return "no refresh token stored"
	case KindClientCredentialsMissing:
		return "no client credentials stored"
	case KindAuthenticationRequired:
		return "authentication required"
	default:
		return e.Kind.String()
	}
}

// Message returns the server supplied message of a status error, falling back
// to the generic description of the status code
func (e *NetworkError) Message() string {
	for _, key := range errorMessageKeys {
		if msg, ok := e.Body[key].(string); ok && msg != "" {
			return msg
		}
	}
	if text := http.StatusText(e.StatusCode); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", e.StatusCode)
}

// Is matches sentinels by kind. A sentinel with a StatusCode also matches the code.
func (e *NetworkError) Is(target error) bool {
	t, ok := target.(*NetworkError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.StatusCode == 0 || t.StatusCode == e.StatusCode
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsUnauthorized checks if the error is a 401 status error
func (e *NetworkError) IsUnauthorized() bool {
	return e.Kind == KindStatus && e.StatusCode == http.StatusUnauthorized
}

// IsForbidden checks if the error is a 403 status error
func (e *NetworkError) IsForbidden() bool {
	return e.Kind == KindStatus && e.StatusCode == http.StatusForbidden
}

// IsNotFound checks if the error is a 404 status error
func (e *NetworkError) IsNotFound() bool {
	return e.Kind == KindStatus && e.StatusCode == http.StatusNotFound
}

// RequiresReauthentication reports whether the caller should send the user back to login
func RequiresReauthentication(err error) bool {
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		return false
	}
	switch netErr.Kind {
	case KindAuthenticationRequired, KindRefreshTokenMissing, KindClientCredentialsMissing:
		return true
	case KindStatus:
		return netErr.IsUnauthorized()
	}
	return false
}
