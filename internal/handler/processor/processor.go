// Package processor provides the steps a delivery runs through and a generic way of chaining them over a bridge.Bus.
package processor

import (
	"context"
	"log/slog"

	"github.com/isometry/netbox-catalyst-bridge/internal/bridge"
	"github.com/isometry/netbox-catalyst-bridge/internal/controllers/catalyst"
	"github.com/isometry/netbox-catalyst-bridge/internal/validation"
)

// Processor is a single pipeline step. Returning an error settles the bus from it.
// A processor holds no per-delivery state and is safe for concurrent use.
type Processor interface {
	Name() string
	Process(ctx context.Context, logger *slog.Logger, bus *bridge.Bus) error
}

// SecretStore fetches parameters from a secret backend.
type SecretStore interface {
	GetSecret(ctx context.Context, key string, encrypted bool) (*string, error)
}

// ObjectStore archives raw deliveries.
type ObjectStore interface {
	PutS3Object(ctx context.Context, id string, bucket string, body []byte) error
}

// SecretProvider returns the webhook secret currently in effect.
type SecretProvider interface {
	WebhookSecret() *validation.WebhookSecret
}

// CredentialSink receives Catalyst Center credentials.
type CredentialSink interface {
	SetCredentials(creds catalyst.Credentials)
}

// SessionManager hands out controller tokens.
type SessionManager interface {
	Token(ctx context.Context, force bool) (string, error)
}

// InterfaceUpdater applies update intents to the controller.
type InterfaceUpdater interface {
	UpdateInterface(ctx context.Context, intent *bridge.UpdateIntent, token string) (*catalyst.Result, error)
}

// Process runs processors in order until one fails or settles the bus.
func Process(ctx context.Context, logger *slog.Logger, bus *bridge.Bus, processors ...Processor) *bridge.Bus {
	for _, p := range processors {
		if err := p.Process(ctx, logger.With(slog.String("processor", p.Name())), bus); err != nil {
			bus.Fail(err)
			return bus
		}
		if bus.Settled() {
			return bus
		}
	}
	return bus
}

// Finalise runs every post-processor regardless of the outcome. Their errors are logged and never change the response.
func Finalise(ctx context.Context, logger *slog.Logger, bus *bridge.Bus, processors ...Processor) {
	for _, p := range processors {
		pLogger := logger.With(slog.String("processor", p.Name()))
		if err := p.Process(ctx, pLogger, bus); err != nil {
			pLogger.Warn("post-processor failed", slog.Any("error", err))
		}
	}
}
