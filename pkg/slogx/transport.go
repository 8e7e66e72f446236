package slogx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gamehive/gamehive/pkg/idx"
)

// NewTransport wraps an http.RoundTripper so every outgoing request is logged
// with its request id, status and duration. If the request carries no
// X-Request-ID header one is generated, so calls made outside the SDK are
// still correlatable. A nil base uses http.DefaultTransport.
func NewTransport(base http.RoundTripper, logger *slog.Logger) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &loggingTransport{base: base, logger: logger}
}

type loggingTransport struct {
	base   http.RoundTripper
	logger *slog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	reqID := req.Header.Get("X-Request-ID")
	if reqID == "" {
		reqID = idx.New().String()
		req = req.Clone(req.Context())
		req.Header.Set("X-Request-ID", reqID)
	}

	logger := t.logger.With(
		"req_id", reqID,
		"method", req.Method,
		"path", req.URL.Path,
		"host", req.URL.Host,
	)

	resp, err := t.base.RoundTrip(req)

	duration := time.Since(start).Milliseconds()
	if err != nil {
		logger.Warn("http_request_failed",
			"duration_ms", duration,
			"error", err.Error(),
		)
		return nil, err
	}

	logger.Info("http_request",
		"status", resp.StatusCode,
		"duration_ms", duration,
	)
	return resp, nil
}
