package processor

import (
	"context"
	"log/slog"

	"github.com/isometry/netbox-catalyst-bridge/internal/bridge"
)

type sessionProcessor struct {
	sessions    SessionManager
	credentials *Credentials
}

// NewSessionProcessor obtains a controller token for the delivery. A login failure invalidates
// credentials, when set, so rotated secrets are picked up by the next delivery.
func NewSessionProcessor(sessions SessionManager, credentials *Credentials) Processor {
	return &sessionProcessor{sessions: sessions, credentials: credentials}
}

func (p *sessionProcessor) Name() string {
	return "session"
}

func (p *sessionProcessor) Process(ctx context.Context, logger *slog.Logger, bus *bridge.Bus) error {
	token, err := p.sessions.Token(ctx, false)
	if err != nil {
		logger.Warn("failed to obtain controller session", slog.Any("error", err))
		if p.credentials != nil {
			p.credentials.Invalidate()
		}
		return err
	}
	bus.Token = token
	return nil
}
