package catalyst

import (
	"log/slog"
	"net/http"

	"github.com/isometry/netbox-catalyst-bridge/internal/helpers"
)

type loggingRoundTripper struct {
	next   http.RoundTripper
	logger *slog.Logger
}

// RoundTrip logs the request line and the response status. Credentials and tokens are never logged.
func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	l.logger.Log(req.Context(), helpers.LevelTrace, "sending request", slog.String("method", req.Method), slog.String("url", req.URL.Redacted()))
	resp, err := l.next.RoundTrip(req)
	if err != nil {
		l.logger.Log(req.Context(), helpers.LevelTrace, "request failed", slog.String("method", req.Method), slog.Any("error", err))
		return resp, err
	}
	l.logger.Log(req.Context(), helpers.LevelTrace, "received response", slog.String("method", req.Method), slog.String("status", resp.Status))
	return resp, nil
}
