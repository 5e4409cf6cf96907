package handler

import (
	"context"
	"log/slog"

	"github.com/isometry/netbox-catalyst-bridge/internal/controllers/catalyst"
	"github.com/isometry/netbox-catalyst-bridge/internal/handler/processor"
)

// WithLogger sets the logger instance for the handler.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithContext sets the context used while initialising the handler.
func WithContext(ctx context.Context) Option {
	return func(h *Handler) {
		h.ctx = ctx
	}
}

// WithCatalystController injects a ready Catalyst Center controller. Catalyst options are then ignored.
func WithCatalystController(ctl *catalyst.Controller) Option {
	return func(h *Handler) {
		h.catalystController = ctl
	}
}

// WithCatalystOptions appends options used to build the Catalyst Center controller.
func WithCatalystOptions(opts ...catalyst.Option) Option {
	return func(h *Handler) {
		h.catalystOptions = append(h.catalystOptions, opts...)
	}
}

// WithAuthMode sets where credentials come from: env or ssm.
func WithAuthMode(authMode string) Option {
	return func(h *Handler) {
		h.authMode = authMode
	}
}

// WithSSMKey sets the SSM parameter holding the credentials.
func WithSSMKey(key string) Option {
	return func(h *Handler) {
		h.ssmKey = key
	}
}

// WithSecretStore sets the backend used in ssm mode.
func WithSecretStore(store processor.SecretStore) Option {
	return func(h *Handler) {
		h.secretStore = store
	}
}

// WithWebhookSecret configures the secret deliveries are signed with. Empty disables verification.
func WithWebhookSecret(secret string) Option {
	return func(h *Handler) {
		h.webhookSecret = secret
	}
}

// WithSignatureHeader sets the header carrying the delivery signature.
func WithSignatureHeader(header string) Option {
	return func(h *Handler) {
		h.signatureHeader = header
	}
}

// WithCustomField sets the NetBox custom field holding the interface UUID.
func WithCustomField(field string) Option {
	return func(h *Handler) {
		h.customField = field
	}
}

// WithArchive enables archiving verified deliveries to bucket.
func WithArchive(bucket string) Option {
	return func(h *Handler) {
		h.archiveBucket = bucket
	}
}

// WithObjectStore sets the archive backend.
func WithObjectStore(store processor.ObjectStore) Option {
	return func(h *Handler) {
		h.objectStore = store
	}
}

// WithLambdaPayloadType sets the lambda payload type for a Handler instance.
func WithLambdaPayloadType(payloadType string) Option {
	return func(h *Handler) {
		h.lambdaPayloadType = payloadType
	}
}
