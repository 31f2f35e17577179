package middleware

import (
	"net/http"

	"bookrec/internal/logger"
)

// RequestIDHeader carries the fetch id to the recommendation service.
const RequestIDHeader = "X-Request-ID"

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Chain wraps base with the given middlewares; the first one is outermost.
func Chain(base http.RoundTripper, mws ...func(http.RoundTripper) http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}

// RequestID copies the context request id into the outgoing headers.
func RequestID(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		id, ok := logger.IDFrom(r.Context())
		if !ok || r.Header.Get(RequestIDHeader) != "" {
			return next.RoundTrip(r)
		}
		r = r.Clone(r.Context())
		r.Header.Set(RequestIDHeader, id)
		return next.RoundTrip(r)
	})
}
