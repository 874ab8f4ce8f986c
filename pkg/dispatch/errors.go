package dispatch

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed errors below through errors.Is.
var (
	ErrConfiguration  = errors.New("configuration error")
	ErrCookieRequired = errors.New("cookie required")
	ErrTransport      = errors.New("transport error")
	ErrParse          = errors.New("parse error")
	ErrMockEngine     = errors.New("mock engine error")
)

// ConfigurationError reports a profile that cannot be dispatched: an
// unknown interface id, or a live status without an endpoint.
type ConfigurationError struct {
	InterfaceID string
	Reason      string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("interface %s: %s", e.InterfaceID, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// CookieRequiredError reports a cookie-required profile invoked without a
// cookie.
type CookieRequiredError struct {
	InterfaceID string
}

func (e *CookieRequiredError) Error() string {
	return fmt.Sprintf("interface %s requires a cookie; set one before the request", e.InterfaceID)
}

func (e *CookieRequiredError) Is(target error) bool { return target == ErrCookieRequired }

// TransportError reports a network-level failure. Params holds the
// serialized request parameters.
type TransportError struct {
	InterfaceID string
	URL         string
	Params      string
	Err         error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed (interface %s, params %q): %v", e.URL, e.InterfaceID, e.Params, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ParseError reports a response body that could not be decoded or parsed.
// Body holds the raw response for diagnostics.
type ParseError struct {
	InterfaceID string
	URL         string
	Params      string
	Body        []byte
	Err         error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing response of %s failed (interface %s, params %q): %v", e.URL, e.InterfaceID, e.Params, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// MockEngineError reports a failure to resolve a rule or generate mock data.
type MockEngineError struct {
	InterfaceID string
	Engine      string
	Err         error
}

func (e *MockEngineError) Error() string {
	if e.Engine == "" {
		return fmt.Sprintf("mock interface %s: %v", e.InterfaceID, e.Err)
	}
	return fmt.Sprintf("mock interface %s (engine %s): %v", e.InterfaceID, e.Engine, e.Err)
}

func (e *MockEngineError) Unwrap() error { return e.Err }

func (e *MockEngineError) Is(target error) bool { return target == ErrMockEngine }
