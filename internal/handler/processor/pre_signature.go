package processor

import (
	"context"
	"log/slog"

	"github.com/isometry/netbox-catalyst-bridge/internal/bridge"
	"github.com/isometry/netbox-catalyst-bridge/internal/helpers"
	"github.com/isometry/netbox-catalyst-bridge/internal/validation"
	"golang.org/x/time/rate"
)

type signatureProcessor struct {
	secrets SecretProvider
	header  string
	warning *rate.Sometimes
}

// NewSignatureProcessor verifies the HMAC-SHA512 signature found under header against the secret of secrets.
func NewSignatureProcessor(secrets SecretProvider, header string) Processor {
	if header == "" {
		header = validation.DefaultSignatureHeader
	}
	return &signatureProcessor{secrets: secrets, header: header, warning: helpers.OnceAMinute()}
}

func (p *signatureProcessor) Name() string {
	return "signature"
}

func (p *signatureProcessor) Process(_ context.Context, logger *slog.Logger, bus *bridge.Bus) error {
	bus.Event = bridge.NewWebhookEvent(bus.Request, p.header)

	secret := p.secrets.WebhookSecret()
	if secret.Insecure() {
		p.warning.Do(func() {
			logger.Warn("no webhook secret configured, accepting unsigned deliveries")
		})
		bus.Verified = true
		return nil
	}

	if err := secret.ValidateSignature(bus.Event.Body, bus.Request.Headers, p.header); err != nil {
		logger.Warn("rejecting delivery", slog.Any("error", err))
		return bridge.WrapError(bridge.SignatureInvalid, bridge.StageSignature, err, "signature check failed")
	}
	bus.Verified = true
	logger.Debug("signature is valid")
	return nil
}
