package bridge

import (
	"time"

	"github.com/isometry/netbox-catalyst-bridge/internal/models"
)

// WebhookEvent is a single inbound delivery. It is never mutated after construction.
type WebhookEvent struct {
	Body        []byte
	Signature   string
	ContentType string
	ReceivedAt  time.Time
}

// NewWebhookEvent captures the body and the signature found under signatureHeader.
func NewWebhookEvent(req models.Request, signatureHeader string) *WebhookEvent {
	signature, _ := req.Header(signatureHeader)
	contentType, _ := req.Header("Content-Type")
	return &WebhookEvent{
		Body:        req.Body,
		Signature:   signature,
		ContentType: contentType,
		ReceivedAt:  time.Now().UTC(),
	}
}
