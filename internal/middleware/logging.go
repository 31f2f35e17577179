package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"bookrec/internal/logger"
)

// RequestLogger logs outgoing requests at the DEBUG level and failures at WARN.
func RequestLogger(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()

		resp, err := next.RoundTrip(r)

		entry := logger.For(r.Context()).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.EscapedPath(),
			"query":  r.URL.Query(),
			"took":   time.Since(start),
		})
		if err != nil {
			entry.WithError(err).Warn("http.request.failed")
			return nil, err
		}
		entry.WithField("status", resp.StatusCode).Debug("http.request")
		return resp, nil
	})
}
